package share

import (
	"strings"
	"testing"

	"github.com/linguloop/backend/internal/models"
)

func TestMintParseRoundTrip(t *testing.T) {
	m := NewMinter([]byte("test-secret"))

	token, err := m.Mint("session-42", models.DifficultyMedium)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if token == "" {
		t.Fatal("minted empty token")
	}

	sessionID, difficulty, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if sessionID != "session-42" || difficulty != models.DifficultyMedium {
		t.Errorf("parsed (%q, %s), want (session-42, medium)", sessionID, difficulty)
	}
}

func TestMintedTokensAreUnique(t *testing.T) {
	m := NewMinter([]byte("test-secret"))

	a, err := m.Mint("s1", models.DifficultyEasy)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	b, err := m.Mint("s1", models.DifficultyEasy)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if a == b {
		t.Error("two mints for the same set produced identical tokens")
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	m := NewMinter([]byte("test-secret"))

	token, err := m.Mint("s1", models.DifficultyHard)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// Corrupt the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments", len(parts))
	}
	prefix := "AAAA"
	if strings.HasPrefix(parts[2], prefix) {
		prefix = "BBBB"
	}
	tampered := parts[0] + "." + parts[1] + "." + prefix + parts[2][4:]
	if _, _, err := m.Parse(tampered); err == nil {
		t.Error("tampered token parsed successfully")
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, err := NewMinter([]byte("secret-a")).Mint("s1", models.DifficultyEasy)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, _, err := NewMinter([]byte("secret-b")).Parse(token); err == nil {
		t.Error("token signed with a different secret parsed successfully")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewMinter([]byte("test-secret"))
	if _, _, err := m.Parse("not-a-jwt"); err == nil {
		t.Error("garbage input parsed successfully")
	}
}
