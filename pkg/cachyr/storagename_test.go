package cachyr

import (
	"strings"
	"testing"
)

func Test_DeriveStorageName_Returns_Encoded_Key_When_Short_Enough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"short", "short"},
		{"weather/oslo", "weather%2Foslo"},
		{strings.Repeat("a", maxStorageNameBytes), strings.Repeat("a", maxStorageNameBytes)},
	}

	for _, tt := range tests {
		if got := deriveStorageName(tt.key); got != tt.want {
			t.Fatalf("deriveStorageName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func Test_DeriveStorageName_Respects_Byte_Bound_When_Key_Is_Long(t *testing.T) {
	t.Parallel()

	keys := []string{
		strings.Repeat("a", 256),
		strings.Repeat("a", 10_000),
		// Multi-byte runes and escape inflation push the encoded form
		// past the bound faster than the character count suggests.
		strings.Repeat("å", 200),
		strings.Repeat("日本語", 100),
		strings.Repeat("/x", 400),
	}

	for _, key := range keys {
		name := deriveStorageName(key)
		if len(name) > maxStorageNameBytes {
			t.Fatalf("deriveStorageName of %d-char key produced %d bytes, bound is %d",
				len(key), len(name), maxStorageNameBytes)
		}
	}
}

func Test_DeriveStorageName_Keeps_Key_Tail_When_Truncating(t *testing.T) {
	t.Parallel()

	key := strings.Repeat("p/", 200) + "distinguishing-tail"

	name := deriveStorageName(key)
	if !strings.HasSuffix(name, "distinguishing-tail") {
		t.Fatalf("storage name %q does not keep the key tail", name)
	}
}

func Test_DeriveStorageName_Differs_When_Long_Keys_Share_A_Suffix(t *testing.T) {
	t.Parallel()

	shared := strings.Repeat("s", 300)
	key1 := "first/" + shared
	key2 := "second/" + shared

	name1 := deriveStorageName(key1)
	name2 := deriveStorageName(key2)

	if name1 == name2 {
		t.Fatalf("distinct long keys derived the same storage name %q", name1)
	}
}

func Test_DeriveStorageName_Is_Random_Per_Call_When_Key_Is_Long(t *testing.T) {
	t.Parallel()

	key := strings.Repeat("k", 1000)

	// The UUID prefix makes re-derivation pick a new name, which is why
	// the index must remember names instead of recomputing them.
	if deriveStorageName(key) == deriveStorageName(key) {
		t.Fatal("two derivations of the same long key matched")
	}
}
