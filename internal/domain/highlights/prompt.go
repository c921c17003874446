package highlights

import (
	"fmt"
	"slices"

	"github.com/forPelevin/hlshorts/internal/types"
)

const systemPromptTemplate = `You are a video editing assistant. Given a transcript of a video (from subtitles):
1. Identify the most interesting and important moments that tell a coherent story.
2. Create timestamps for a summary video with a total length between %g and %g seconds.
3. Select moments that create a logical narrative flow from one to the next.
4. Return the response as JSON with the following structure:
   {
     "video_summary": [
       {
         "start_time": (number in seconds),
         "end_time": (number in seconds),
         "description": "short, engaging description",
         "category": "setup|conflict|climax|resolution|punchline"
       }
     ]
   }
5. Use categories: setup, conflict, climax, resolution, punchline.
Format your response as valid JSON.`

const (
	invalidStructureFeedback = "The response was not valid JSON or did not contain the expected structure. Please try again and return only the correct JSON."
	outOfRangeFeedback       = "The total duration of the summary is %.1f seconds, which is out of the required range (%g-%g seconds). Please fix it and return a new JSON."
)

// Categories the prompt asks the model to use. Other values are accepted.
var Categories = []string{"setup", "conflict", "climax", "resolution", "punchline"}

// UncommonCategories lists the categories in doc that are not in Categories,
// in first-seen order.
func UncommonCategories(doc map[string]any) []string {
	list, _ := doc[keySummary].([]any)
	var out []string
	seen := map[string]bool{}
	for _, e := range list {
		entry, _ := e.(map[string]any)
		c, _ := entry[keyCategory].(string)
		if c == "" || seen[c] || slices.Contains(Categories, c) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// SystemPrompt returns the fixed instruction for a [min, max] second window.
func SystemPrompt(min, max float64) string {
	return fmt.Sprintf(systemPromptTemplate, min, max)
}

// InitialConversation builds the two opening turns of a selection.
func InitialConversation(transcript string, min, max float64) []types.Message {
	return []types.Message{
		{Role: types.RoleSystem, Content: SystemPrompt(min, max)},
		{Role: types.RoleUser, Content: "Here's the transcript to analyze:\n\n" + transcript},
	}
}

// OutOfRangeFeedback is the corrective turn sent when the total misses the window.
func OutOfRangeFeedback(total, min, max float64) string {
	return fmt.Sprintf(outOfRangeFeedback, total, min, max)
}
