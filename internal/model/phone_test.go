package model

import "testing"

func TestIsValidBangladeshPhone(t *testing.T) {
	valid := []string{
		"01711111111",
		"+8801711111111",
		"8801711111111",
		"1711111111",
		"017 1111 1111",
		"01911234567",
	}
	for _, phone := range valid {
		if !IsValidBangladeshPhone(phone) {
			t.Fatalf("expected %q to be valid", phone)
		}
	}

	invalid := []string{
		"123",
		"",
		"01211111111",  // operator prefix 12 does not exist
		"017111111111", // too long
		"0171111111",   // too short
		"abcdefghijk",
	}
	for _, phone := range invalid {
		if IsValidBangladeshPhone(phone) {
			t.Fatalf("expected %q to be invalid", phone)
		}
	}
}

func TestFormatBangladeshPhone(t *testing.T) {
	cases := map[string]string{
		"01711111111":    "+8801711111111",
		"8801711111111":  "+8801711111111",
		"+8801711111111": "+8801711111111",
		"1711111111":     "+8801711111111",
		"017 1111 1111":  "+8801711111111",
	}
	for in, want := range cases {
		if got := FormatBangladeshPhone(in); got != want {
			t.Fatalf("format %q: expected %q, got %q", in, want, got)
		}
	}
}
