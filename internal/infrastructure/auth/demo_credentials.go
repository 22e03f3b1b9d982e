package auth

import (
	"strings"
	"time"

	"github.com/wabdevconsult/batuta/domain"
	"golang.org/x/crypto/bcrypt"
)

// DemoAccount is one entry of the fixed demonstration table.
// These logins bypass the backend and are not authentication.
type DemoAccount struct {
	Email    string
	Password string
	Profile  domain.User
}

var demoCreatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DemoAccounts is the fixed allow-list, one account per role
var DemoAccounts = []DemoAccount{
	{
		Email:    "admin@batuta.fr",
		Password: "admin123",
		Profile: domain.User{
			ID: "demo-admin", Email: "admin@batuta.fr", Role: domain.RoleAdmin,
			FirstName: "Alice", LastName: "Martin", Company: "Batuta", Phone: "+33 1 23 45 67 89",
			CreatedAt: demoCreatedAt,
		},
	},
	{
		Email:    "technicien@batuta.fr",
		Password: "tech123",
		Profile: domain.User{
			ID: "demo-technicien", Email: "technicien@batuta.fr", Role: domain.RoleTechnicien,
			FirstName: "Thomas", LastName: "Bernard", Company: "Batuta", Phone: "+33 6 12 34 56 78",
			CreatedAt: demoCreatedAt,
		},
	},
	{
		Email:    "client@batuta.fr",
		Password: "client123",
		Profile: domain.User{
			ID: "demo-client", Email: "client@batuta.fr", Role: domain.RoleClient,
			FirstName: "Claire", LastName: "Dubois", Company: "Boulangerie Dubois", Phone: "+33 6 98 76 54 32",
			CreatedAt: demoCreatedAt,
		},
	},
	{
		Email:    "fournisseur@batuta.fr",
		Password: "fournisseur123",
		Profile: domain.User{
			ID: "demo-fournisseur", Email: "fournisseur@batuta.fr", Role: domain.RoleFournisseur,
			FirstName: "François", LastName: "Petit", Company: "SolarEquip", Phone: "+33 4 56 78 90 12",
			CreatedAt: demoCreatedAt,
		},
	},
}

type demoEntry struct {
	hash    []byte
	profile domain.User
}

// DemoDirectory matches credentials against the demo table.
// Passwords are kept as bcrypt hashes once the directory is built.
type DemoDirectory struct {
	entries map[string]demoEntry
}

// NewDemoDirectory hashes the demo table at the minimum bcrypt cost
func NewDemoDirectory(accounts []DemoAccount) (*DemoDirectory, error) {
	d := &DemoDirectory{entries: make(map[string]demoEntry, len(accounts))}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		d.entries[strings.ToLower(a.Email)] = demoEntry{hash: hash, profile: a.Profile}
	}
	return d, nil
}

// Match returns the canned result for a demo pair, or false for anything else
func (d *DemoDirectory) Match(creds domain.Credentials) (*domain.AuthResult, bool) {
	if d == nil {
		return nil, false
	}
	entry, ok := d.entries[strings.ToLower(strings.TrimSpace(creds.Email))]
	if !ok {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword(entry.hash, []byte(creds.Password)) != nil {
		return nil, false
	}

	user := entry.profile
	return &domain.AuthResult{User: &user, Token: DemoToken(user.Role)}, true
}

// Profile returns the canned profile of a demo role
func (d *DemoDirectory) Profile(role domain.Role) (*domain.User, bool) {
	if d == nil {
		return nil, false
	}
	for _, e := range d.entries {
		if e.profile.Role == role {
			user := e.profile
			return &user, true
		}
	}
	return nil, false
}
