package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/camelrate/internal/vision"
)

// Template is a parsed category prompt file.
type Template struct {
	Category string           `json:"category"`
	Sections []Section        `json:"sections"`
	Messages []vision.Message `json:"predefined_messages"`
}

type templateFile struct {
	SystemPrompt       json.RawMessage `json:"system_prompt"`
	PredefinedMessages []messageFile   `json:"predefined_messages"`
}

type systemPromptObject struct {
	Text     string    `json:"text"`
	Sections []Section `json:"sections"`
}

type messageFile struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type partFile struct {
	Type     string          `json:"type"`
	Text     string          `json:"text"`
	ImageURL json.RawMessage `json:"image_url"`
}

// ParseTemplate decodes a <category>_beauty.json document. system_prompt may
// be a string, {"text": string}, or {"sections": [{"name", "text"}]}. Message
// content may be a string or a list of text and image_url parts.
func ParseTemplate(category string, data []byte) (*Template, error) {
	var raw templateFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, category, err)
	}

	sections, err := parseSystemPrompt(raw.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, category, err)
	}

	messages := make([]vision.Message, 0, len(raw.PredefinedMessages))
	for i, m := range raw.PredefinedMessages {
		msg, err := parseMessage(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: message %d: %v", ErrInvalidTemplate, category, i, err)
		}
		messages = append(messages, msg)
	}

	return &Template{
		Category: category,
		Sections: sections,
		Messages: messages,
	}, nil
}

func parseSystemPrompt(raw json.RawMessage) ([]Section, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("system_prompt required")
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return requireSections(splitSections(text))
	}

	var obj systemPromptObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("system_prompt: %v", err)
	}

	if len(obj.Sections) > 0 {
		sections := make([]Section, 0, len(obj.Sections))
		for _, s := range obj.Sections {
			sections = append(sections, normalizeSection(s))
		}
		return sections, nil
	}

	return requireSections(splitSections(obj.Text))
}

func requireSections(sections []Section) ([]Section, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("system_prompt is empty")
	}
	return sections, nil
}

func parseMessage(m messageFile) (vision.Message, error) {
	var role vision.Role
	switch strings.ToLower(m.Role) {
	case "user":
		role = vision.RoleUser
	case "assistant":
		role = vision.RoleAssistant
	default:
		return vision.Message{}, fmt.Errorf("unsupported role %q", m.Role)
	}

	var text string
	if err := json.Unmarshal(m.Content, &text); err == nil {
		return vision.Message{Role: role, Parts: []vision.Part{vision.Text(text)}}, nil
	}

	var parts []partFile
	if err := json.Unmarshal(m.Content, &parts); err != nil {
		return vision.Message{}, fmt.Errorf("content: %v", err)
	}

	out := make([]vision.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case "text":
			out = append(out, vision.Text(p.Text))
		case "image_url":
			url, err := imageURL(p.ImageURL)
			if err != nil {
				return vision.Message{}, err
			}
			out = append(out, vision.Image(url))
		default:
			return vision.Message{}, fmt.Errorf("unsupported part type %q", p.Type)
		}
	}

	return vision.Message{Role: role, Parts: out}, nil
}

func imageURL(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.URL == "" {
		return "", fmt.Errorf("image_url part missing url")
	}
	return obj.URL, nil
}
