package vars

import "testing"

func TestFirstNonZero(t *testing.T) {
	if v := FirstNonZero("", "flag", "config"); v != "flag" {
		t.Fatalf("got %v", v)
	}
	if v := FirstNonZero(0, 0); v != 0 {
		t.Fatalf("got %v", v)
	}
}

func TestParseBool(t *testing.T) {
	for str, want := range map[string]bool{
		"true": true, "Yes": true, " on ": true, "1": true,
		"false": false, "N": false, "off": false, "0": false,
	} {
		got, err := ParseBool(str)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%q: got %v", str, got)
		}
	}
	if _, err := ParseBool("maybe"); err == nil {
		t.Fatal("should fail")
	}
}
