package ai

import (
	"errors"
	"testing"
)

func TestCleanJSONResponse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Sure! Here it is: {\"a\":1} hope it helps", `{"a":1}`},
		{"  \n{\"a\":1}\n  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := cleanJSONResponse(tc.in); got != tc.want {
			t.Errorf("cleanJSONResponse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseStructuredResponse(t *testing.T) {
	got, err := ParseStructuredResponse[ActivityInsight]("```json\n{\"summary\":\"nice\",\"skills\":[\"a\",\"b\"]}\n```")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got.Summary != "nice" || len(got.Skills) != 2 {
		t.Fatalf("got=%+v", got)
	}
}

func TestParseStructuredResponseInvalid(t *testing.T) {
	for _, in := range []string{"", "not json at all", "{\"skills\": [1, }"} {
		if _, err := ParseStructuredResponse[ActivityInsight](in); !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("input %q: err=%v, want ErrInvalidResponse", in, err)
		}
	}
}
