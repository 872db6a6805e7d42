package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"propfolio/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// F returns a pointer to the given float64, for optional money fields.
func F(v float64) *float64 {
	return &v
}

// T returns a pointer to the given time, for optional date fields.
func T(v time.Time) *time.Time {
	return &v
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestProperty creates a ready residential property with a purchase
// price and full ownership.
func CreateTestProperty(t *testing.T, db *gorm.DB, userID uint) *models.Property {
	t.Helper()

	n := nextID()
	purchaseDate := time.Now().AddDate(-3, 0, 0)
	property := &models.Property{
		UserID:        userID,
		Nickname:      fmt.Sprintf("Test Property %d", n),
		Kind:          models.PropertyKindResidential,
		Status:        models.ConstructionStatusReady,
		PurchasePrice: F(5000000),
		PurchaseDate:  &purchaseDate,
		City:          "Bangalore",
		PostalCode:    "560001",
		CarpetArea:    F(1100),
	}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("failed to create test property: %v", err)
	}
	return property
}

// CreateTestPropertyWith creates a property after applying mutate to the
// default fixture, for tests that need specific field combinations.
func CreateTestPropertyWith(t *testing.T, db *gorm.DB, userID uint, mutate func(*models.Property)) *models.Property {
	t.Helper()

	n := nextID()
	purchaseDate := time.Now().AddDate(-3, 0, 0)
	property := &models.Property{
		UserID:        userID,
		Nickname:      fmt.Sprintf("Test Property %d", n),
		Kind:          models.PropertyKindResidential,
		Status:        models.ConstructionStatusReady,
		PurchasePrice: F(5000000),
		PurchaseDate:  &purchaseDate,
		City:          "Bangalore",
		PostalCode:    "560001",
		CarpetArea:    F(1100),
	}
	mutate(property)
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("failed to create test property: %v", err)
	}
	return property
}

// CreateTestLoan creates a loan for the given property.
func CreateTestLoan(t *testing.T, db *gorm.DB, propertyID uint) *models.Loan {
	t.Helper()

	loan := &models.Loan{
		PropertyID:         propertyID,
		LenderName:         fmt.Sprintf("Test Bank %d", nextID()),
		LoanAmount:         3000000,
		InterestRate:       8.5,
		EMI:                26000,
		TenureMonths:       240,
		OutstandingBalance: 2500000,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("failed to create test loan: %v", err)
	}
	return loan
}

// CreateTestCashFlow creates a rented cash-flow record for the given property.
func CreateTestCashFlow(t *testing.T, db *gorm.DB, propertyID uint) *models.CashFlow {
	t.Helper()

	rentStart := time.Now().AddDate(-1, 0, 0)
	cashFlow := &models.CashFlow{
		PropertyID:         propertyID,
		RentalStatus:       models.RentalStatusRented,
		MonthlyRent:        F(25000),
		RentStartDate:      &rentStart,
		MonthlyMaintenance: F(3000),
		AnnualPropertyTax:  F(12000),
	}
	if err := db.Create(cashFlow).Error; err != nil {
		t.Fatalf("failed to create test cash flow: %v", err)
	}
	return cashFlow
}
