package utils

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

func armoredKeys(t *testing.T) (string, string) {
	t.Helper()
	entity, err := openpgp.NewEntity("Back Office", "test", "vault@example.com", nil)
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}
	// Подписи идентичности и подключа нужны публичному ключу:
	// без них Encrypt не находит ни хеш, ни ключ шифрования.
	for _, id := range entity.Identities {
		if err := id.SelfSignature.SignUserId(id.UserId.Id, entity.PrimaryKey, entity.PrivateKey, nil); err != nil {
			t.Fatal(err)
		}
	}
	for _, sub := range entity.Subkeys {
		if err := sub.Sig.SignKey(sub.PublicKey, entity.PrivateKey, nil); err != nil {
			t.Fatal(err)
		}
	}

	var priv bytes.Buffer
	w, err := armor.Encode(&priv, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := entity.SerializePrivate(w, nil); err != nil {
		t.Fatal(err)
	}
	w.Close()

	var pub bytes.Buffer
	w, err = armor.Encode(&pub, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatal(err)
	}
	w.Close()

	return pub.String(), priv.String()
}

func TestVaultRoundTrip(t *testing.T) {
	pub, priv := armoredKeys(t)
	vault, err := NewVault(pub, priv, "hmac-key")
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	sealed, err := vault.Seal("4111111111111111|12/29|123")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if strings.Contains(sealed, "4111111111111111") {
		t.Fatal("sealed data contains plaintext")
	}

	opened, err := vault.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != "4111111111111111|12/29|123" {
		t.Errorf("got %q", opened)
	}
}

func TestVaultWithoutPrivateKey(t *testing.T) {
	pub, _ := armoredKeys(t)
	vault, err := NewVault(pub, "", "k")
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}
	sealed, err := vault.Seal("secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := vault.Open(sealed); !errors.Is(err, ErrVaultLocked) {
		t.Errorf("expected ErrVaultLocked, got %v", err)
	}
}

func TestFingerprintIsStable(t *testing.T) {
	pub, _ := armoredKeys(t)
	a, _ := NewVault(pub, "", "key-a")
	b, _ := NewVault(pub, "", "key-b")

	if a.Fingerprint("4111") != a.Fingerprint("4111") {
		t.Error("fingerprint must be deterministic")
	}
	if a.Fingerprint("4111") == b.Fingerprint("4111") {
		t.Error("fingerprint must depend on key")
	}
}

func TestValidateLuhn(t *testing.T) {
	cases := []struct {
		number string
		want   bool
	}{
		{"4111111111111111", true},
		{"5555555555554444", true},
		{"4111111111111112", false},
		{"41111111111a1111", false},
		{"411", false},
	}
	for _, c := range cases {
		if got := ValidateLuhn(c.number); got != c.want {
			t.Errorf("ValidateLuhn(%s) = %v, want %v", c.number, got, c.want)
		}
	}
	if NormalizePAN("4111 1111-1111 1111") != "4111111111111111" {
		t.Error("NormalizePAN did not strip separators")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("ip") || !rl.Allow("ip") {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow("ip") {
		t.Fatal("third request must be limited")
	}
	if rl.GetRemaining("ip") != 0 {
		t.Errorf("remaining: got %d", rl.GetRemaining("ip"))
	}
	if !rl.Allow("other") {
		t.Error("keys must be independent")
	}

	now = now.Add(61 * time.Second)
	if !rl.Allow("ip") {
		t.Error("window should have slid")
	}
	if rl.GetRemaining("ip") != 1 {
		t.Errorf("remaining after slide: got %d", rl.GetRemaining("ip"))
	}
}

func TestMetricsRecordRequestDoesNotDeadlock(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest(10*time.Millisecond, true)
	m.RecordRequest(30*time.Millisecond, false)
	m.RecordError(errors.New("boom"))
	m.RecordCriticalError(errors.New("boom"))
	m.RecordWithdrawal("received")
	m.RecordCardOperation("assign", 3)

	snap := m.GetMetricsSnapshot()
	if snap["total_requests"].(int64) != 2 || snap["failed_requests"].(int64) != 1 {
		t.Errorf("unexpected request counters: %v", snap)
	}
	if snap["error_types"].(map[string]int64)["boom"] != 2 {
		t.Errorf("unexpected error types: %v", snap["error_types"])
	}
	if snap["assignments"].(int64) != 3 {
		t.Errorf("assignments: %v", snap["assignments"])
	}

	m.ResetMetrics()
	if m.GetMetricsSnapshot()["total_requests"].(int64) != 0 {
		t.Error("reset failed")
	}
}
