package providers

import "testing"

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("mock|openrouter:key1|openrouter:key2")
	if len(refs) != 3 {
		t.Fatalf("expected 3 providers got %d", len(refs))
	}
	if refs[1].Name != "openrouter" || refs[1].KeyAlias != "key1" {
		t.Fatalf("unexpected parse result: %+v", refs[1])
	}
}

func TestParseProviderListEmptyDefaultsToMock(t *testing.T) {
	refs := ParseProviderList("  ")
	if len(refs) != 1 || refs[0].Name != "mock" {
		t.Fatalf("expected mock fallback, got %+v", refs)
	}
}

func TestStripCodeFence(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	if got := StripCodeFence(in); got != "{\"a\": 1}" {
		t.Fatalf("unexpected strip result: %q", got)
	}
	if got := StripCodeFence(`{"a": 1}`); got != `{"a": 1}` {
		t.Fatalf("unfenced input changed: %q", got)
	}
}
