package gemini

import (
	"testing"

	"google.golang.org/genai"

	"github.com/forPelevin/hlshorts/internal/types"
)

func TestToContents(t *testing.T) {
	system, contents, err := toContents([]types.Message{
		{Role: types.RoleSystem, Content: "be brief"},
		{Role: types.RoleUser, Content: "transcript"},
		{Role: types.RoleAssistant, Content: "{}"},
		{Role: types.RoleUser, Content: "fix"},
	})
	if err != nil {
		t.Fatalf("toContents: %v", err)
	}
	if system != "be brief" {
		t.Fatalf("unexpected system instruction %q", system)
	}
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	wantRoles := []string{string(genai.RoleUser), string(genai.RoleModel), string(genai.RoleUser)}
	for i, r := range wantRoles {
		if contents[i].Role != r {
			t.Fatalf("content %d role %q, want %q", i, contents[i].Role, r)
		}
	}
	if contents[1].Parts[0].Text != "{}" {
		t.Fatalf("unexpected model text %q", contents[1].Parts[0].Text)
	}
}

func TestToContents_Errors(t *testing.T) {
	if _, _, err := toContents([]types.Message{{Role: types.RoleSystem, Content: "only system"}}); err == nil {
		t.Fatalf("expected error without user content")
	}
	if _, _, err := toContents([]types.Message{{Role: "tool", Content: "x"}}); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestSummarySchemaRequiresFields(t *testing.T) {
	item := SummarySchema.Properties["video_summary"].Items
	if len(item.Required) != 4 {
		t.Fatalf("expected 4 required fields, got %v", item.Required)
	}
}
