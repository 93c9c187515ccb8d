//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pet-marketplace-api"
	ConsumerName = "marketplace-web"

	StateCatalogBaseline = "catalog baseline"
	StatePetListed       = "pet with id 101 is listed"
	StatePetMissing      = "no pet with id 404"
	StateBuyerRegistered = "buyer pact-buyer is registered"
)

const (
	ListedPetID  int64 = 101
	MissingPetID int64 = 404

	SellerID      = "pact-seller"
	BuyerName     = "pact-buyer"
	BuyerEmail    = "pact.buyer@example.com"
	BuyerPassword = "pact-password"
)

const (
	examplePetName  = "Fluffy Pact Cat"
	examplePetCity  = "Wrocław"
	examplePhotoURL = "https://example.pact/pets/fluffy.png"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ListedPet describes the pet seeded for StatePetListed.
type ListedPet struct {
	ID         int64
	Name       string
	Type       string
	PriceCents int64
	City       string
	PhotoURL   string
}

// ExampleListedPet provides stable test data for catalog interactions.
func ExampleListedPet() ListedPet {
	return ListedPet{
		ID:         ListedPetID,
		Name:       examplePetName,
		Type:       "cat",
		PriceCents: 25000,
		City:       examplePetCity,
		PhotoURL:   examplePhotoURL,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
