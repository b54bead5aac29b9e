package conversation

import "fmt"

// Role tags who authored a Turn.
type Role string

const (
	// RolePrompt is a human-authored utterance.
	RolePrompt Role = "Prompt"
	// RoleResponse is a bot-authored utterance. It renders with a trailing
	// separator so a multi-turn transcript can be split back into exchanges.
	RoleResponse Role = "Response"
)

// ResponseSeparator closes every rendered Response.
const ResponseSeparator = "\n---\n"

// Turn is a single utterance in a Dialogue.
type Turn struct {
	Role   Role
	Author string
	Text   string
}

func NewPrompt(author, text string) Turn {
	return Turn{Role: RolePrompt, Author: author, Text: text}
}

func NewResponse(author, text string) Turn {
	return Turn{Role: RoleResponse, Author: author, Text: text}
}

func (t Turn) IsPrompt() bool {
	return t.Role == RolePrompt
}

func (t Turn) IsResponse() bool {
	return t.Role == RoleResponse
}

// String renders the turn the way it appears inside a completion prompt. A
// turn with an unknown role renders with a %!(BADROLE) marker, the way fmt
// flags bad verbs.
func (t Turn) String() string {
	switch t.Role {
	case RolePrompt:
		return fmt.Sprintf("%s: %s\n", t.Author, t.Text)
	case RoleResponse:
		return fmt.Sprintf("%s: %s\n%s", t.Author, t.Text, ResponseSeparator)
	default:
		return fmt.Sprintf("%%!(BADROLE=%q)%s: %s\n", string(t.Role), t.Author, t.Text)
	}
}
