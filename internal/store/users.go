package store

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Role enumerates the account kinds known to the system.
type Role string

const (
	RolePrincipal Role = "principal"
	RoleHOD       Role = "hod"
	RoleFaculty   Role = "faculty"
	RoleStudent   Role = "student"
)

// User is an account record. Immutable once seeded.
type User struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
	RollNo     string `json:"rollNo,omitempty"`
	SecretHash []byte `json:"-"`
}

// Users holds the seeded accounts. Read-only after construction.
type Users struct {
	mu    sync.RWMutex
	users []User
}

// NewUsers creates an empty credential store.
func NewUsers() *Users {
	return &Users{}
}

// Add hashes the secret and appends an account. Intended for startup seeding
// and test setup only; there is no update or delete path.
func (s *Users) Add(u User, secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.SecretHash = hash
	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()
	return nil
}

// FindByUsername returns the account with the given username, or nil.
func (s *Users) FindByUsername(username string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		if s.users[i].Username == username {
			u := s.users[i]
			return &u
		}
	}
	return nil
}

// seedAccounts is the fixed account set created at process start.
var seedAccounts = []struct {
	user   User
	secret string
}{
	{User{Username: "principal", Name: "Dr. Meera Nair", Role: RolePrincipal}, "principal123"},
	{User{Username: "hod_cse", Name: "Prof. Arjun Rao", Role: RoleHOD, Department: "CSE"}, "hod123"},
	{User{Username: "hod_ece", Name: "Prof. Kavitha Iyer", Role: RoleHOD, Department: "ECE"}, "hod123"},
	{User{Username: "faculty_cse", Name: "Anita Sharma", Role: RoleFaculty, Department: "CSE"}, "faculty123"},
	{User{Username: "faculty_ece", Name: "Rahul Menon", Role: RoleFaculty, Department: "ECE"}, "faculty123"},
	{User{Username: "student1", Name: "Priya Patel", Role: RoleStudent, Department: "CSE", RollNo: "CSE001"}, "student123"},
	{User{Username: "student2", Name: "Vikram Singh", Role: RoleStudent, Department: "CSE", RollNo: "CSE002"}, "student123"},
	{User{Username: "student3", Name: "Sneha Reddy", Role: RoleStudent, Department: "ECE", RollNo: "ECE001"}, "student123"},
}

// SeedUsers builds the credential store from the fixed seed data.
func SeedUsers() (*Users, error) {
	s := NewUsers()
	for _, acct := range seedAccounts {
		if err := s.Add(acct.user, acct.secret); err != nil {
			return nil, err
		}
	}
	return s, nil
}
