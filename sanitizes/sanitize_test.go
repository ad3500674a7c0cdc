package sanitizes

import "testing"

func TestSanitize(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"x = 1", "x = 1"},
		{"  x = 1  \n", "x = 1"},
		{"```python\nx = 1\n```", "x = 1"},
		{"```\nx = 1\n```", "x = 1"},
		{"PYTHON\nprint(1)", "print(1)"},
		{"`Python print(1)`", "print(1)"},
		{"```starlark\nlen([])\n```", "len([])"},
		{"python_version = 3", "python_version = 3"},
		{"pyramid = 1", "pyramid = 1"},
		{"print('`')", "print('`')"},
		{"python python x", "python python x"},
		{"```python python\nx", "x"},
		{"py = 3", "py = 3"},
		{"star = 5", "star = 5"},
		{"star = 5\nstar", "star = 5\nstar"},
		{"py = 3\npy + 1", "py = 3\npy + 1"},
		{"python\npy = 3", "py = 3"},
		{"```\nstar = 5\n```", "star = 5"},
		{"```py\nstar = 5\n```", "star = 5"},
		{"Starlark  \r\nx", "x"},
		{"", ""},
		{"```", ""},
		{"  ", ""},
		{"python", ""},
	}
	for _, tc := range testCases {
		if got := Sanitize(tc.input); got != tc.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, input := range []string{
		"```python\n  x = 1\n```\n",
		"py ` py ` x",
		"\t`\tstar\t`\tlen(x)\t`",
		"x = 1",
		"star = 5\nstar",
		"```py\npython\n\nx",
		"",
	} {
		once := Sanitize(input)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("not idempotent on %q: %q then %q", input, once, twice)
		}
	}
}
