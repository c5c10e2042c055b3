package domain

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestUserModelTags(t *testing.T) {
	typ := reflect.TypeOf(User{})

	email, ok := typ.FieldByName("Email")
	if !ok {
		t.Fatal("missing User.Email field")
	}
	if !strings.Contains(email.Tag.Get("gorm"), "uniqueIndex") {
		t.Fatalf("User.Email gorm tag missing uniqueIndex: %q", email.Tag.Get("gorm"))
	}

	verified, ok := typ.FieldByName("IsVerified")
	if !ok {
		t.Fatal("missing User.IsVerified field")
	}
	if !strings.Contains(verified.Tag.Get("gorm"), "default:false") {
		t.Fatalf("User.IsVerified should default to false: %q", verified.Tag.Get("gorm"))
	}
}

func TestSensitiveFieldsAreHiddenFromJSON(t *testing.T) {
	cases := []struct {
		typeName string
		typ      reflect.Type
		field    string
	}{
		{typeName: "User", typ: reflect.TypeOf(User{}), field: "PasswordHash"},
		{typeName: "VerificationCode", typ: reflect.TypeOf(VerificationCode{}), field: "Code"},
	}

	for _, tc := range cases {
		f, ok := tc.typ.FieldByName(tc.field)
		if !ok {
			t.Fatalf("%s.%s missing", tc.typeName, tc.field)
		}
		if got := f.Tag.Get("json"); got != "-" {
			t.Fatalf("expected %s.%s json tag '-' for sensitive field, got %q", tc.typeName, tc.field, got)
		}
	}
}

func TestCompositeIndexContracts(t *testing.T) {
	check := func(name string, typ reflect.Type, index string, fields ...string) {
		t.Helper()
		for _, field := range fields {
			f, ok := typ.FieldByName(field)
			if !ok {
				t.Fatalf("missing %s.%s", name, field)
			}
			if !strings.Contains(f.Tag.Get("gorm"), index) {
				t.Fatalf("expected %s.%s in index %s, got %q", name, field, index, f.Tag.Get("gorm"))
			}
		}
	}

	check("VerificationCode", reflect.TypeOf(VerificationCode{}), "idx_verification_codes_email_purpose", "Email", "Purpose")
	check("Contact", reflect.TypeOf(Contact{}), "uniqueIndex:idx_contacts_user_phone", "UserID", "Phone")
}

func TestCodePurposeValid(t *testing.T) {
	if !CodePurposeEmailVerification.Valid() || !CodePurposePasswordReset.Valid() {
		t.Fatal("expected known purposes to be valid")
	}
	if CodePurpose("login").Valid() {
		t.Fatal("expected unknown purpose to be invalid")
	}
}

func TestVerificationCodeExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	code := VerificationCode{ExpiresAt: now}
	if code.ExpiredAt(now) {
		t.Fatal("code should still be valid at its expiry instant")
	}
	if !code.ExpiredAt(now.Add(time.Nanosecond)) {
		t.Fatal("code should be expired after its expiry instant")
	}
	if code.Used() {
		t.Fatal("fresh code should be unused")
	}
}
