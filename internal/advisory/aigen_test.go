package advisory

import (
	"context"
	"testing"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return f.response, f.err
}

func TestAIGenerator_ParsesFencedJSON(t *testing.T) {
	f := &fakeCompleter{response: "```json\n{\"condition\":\"Common cold\",\"medicine_suggestions\":[\"paracetamol\"]}\n```"}
	g := NewAIGenerator(f)

	p, err := g.GenerateAdvisory(context.Background(), "zukham", "Hindi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Condition != "Common cold" {
		t.Errorf("unexpected condition: %q", p.Condition)
	}
	if p.Source != SourceAI {
		t.Errorf("expected ai source, got %q", p.Source)
	}
	if p.Disclaimer == "" {
		t.Error("expected disclaimer set on AI payload")
	}
}

func TestAIGenerator_MalformedResponse(t *testing.T) {
	f := &fakeCompleter{response: "I cannot help with that."}
	g := NewAIGenerator(f)

	if _, err := g.GenerateAdvisory(context.Background(), "fever", ""); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}
