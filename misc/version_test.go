package misc

import "testing"

func TestIdentity(t *testing.T) {
	if GetAppName() != "fragmerge" {
		t.Errorf("GetAppName() = %q, want fragmerge", GetAppName())
	}
	if len(GetVersion()) == 0 {
		t.Error("GetVersion() returned empty string")
	}
	if len(GetGitHash()) == 0 {
		t.Error("GetGitHash() returned empty string")
	}
}
