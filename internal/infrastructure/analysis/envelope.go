package analysis

import "encoding/json"

// Provider envelopes vary between API versions. Each known shape gets its own
// extraction function, tried in a fixed priority order, instead of probing an
// untyped map for whatever fields happen to exist.

// candidatesEnvelope is the candidates[0].content.parts[].text shape
type candidatesEnvelope struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// flatEnvelope is the flatter content[].text shape
type flatEnvelope struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// extractText pulls the first text payload out of a provider response body.
// It returns a *RequestError when the body carries no candidates, and an
// *OutputError when candidates exist but none carries text (safety block
// included).
func extractText(body []byte) (string, error) {
	if text, matched, err := extractCandidates(body); matched {
		return text, err
	}
	if text, matched, err := extractFlat(body); matched {
		return text, err
	}
	return "", &RequestError{Message: "response matched no known envelope shape"}
}

func extractCandidates(body []byte) (string, bool, error) {
	var env candidatesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", false, nil
	}
	if env.PromptFeedback != nil && env.PromptFeedback.BlockReason != "" {
		return "", true, &OutputError{Message: "generation blocked: " + env.PromptFeedback.BlockReason}
	}
	if len(env.Candidates) == 0 {
		return "", false, nil
	}
	candidate := env.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return "", true, &OutputError{Message: "generation stopped by the safety filter"}
	}
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			return part.Text, true, nil
		}
	}
	return "", true, &OutputError{Message: "candidate carried no text parts"}
}

func extractFlat(body []byte) (string, bool, error) {
	var env flatEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", false, nil
	}
	if len(env.Content) == 0 {
		return "", false, nil
	}
	for _, block := range env.Content {
		if block.Text != "" {
			return block.Text, true, nil
		}
	}
	return "", true, &OutputError{Message: "content blocks carried no text"}
}
