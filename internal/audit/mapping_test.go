package audit

import "testing"

func TestParseProcedure(t *testing.T) {
	cases := []struct {
		name         string
		procedure    string
		wantAction   string
		wantResource string
	}{
		{"simple", "user.exists", "exists", "user"},
		{"nested", "user.reset.send", "reset-send", "user"},
		{"gdpr", "user.gdpr.consent", "gdpr-consent", "user"},
		{"camel case lowered", "user.deleteAccount", "deleteaccount", "user"},
		{"no dot", "ping", "ping", "unknown"},
		{"empty", "", "unknown", "unknown"},
		{"trailing dot", "user.", "user.", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseProcedure(tc.procedure)
			if got.Action != tc.wantAction {
				t.Errorf("Action = %q, want %q", got.Action, tc.wantAction)
			}
			if got.Resource != tc.wantResource {
				t.Errorf("Resource = %q, want %q", got.Resource, tc.wantResource)
			}
		})
	}
}
