package conversation

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// On the wire a turn is a single-key object tagged with its role:
//
//	{"Prompt": {"author": "Alexis", "prompt": "Who is god?"}}
//	{"Response": {"author": "God", "prompt": "I am."}}
//
// The inner text key is called "prompt" for both roles.

type turnBody struct {
	Author *string `json:"author" yaml:"author"`
	Text   *string `json:"prompt" yaml:"prompt"`
}

var ErrInvalidTurn = errors.New("invalid turn")

func parseRole(tag string) (Role, error) {
	switch Role(tag) {
	case RolePrompt, RoleResponse:
		return Role(tag), nil
	default:
		return "", errors.Wrapf(ErrInvalidTurn, "unknown turn variant %q", tag)
	}
}

func (b turnBody) toTurn(role Role) (Turn, error) {
	if b.Author == nil {
		return Turn{}, errors.Wrapf(ErrInvalidTurn, "%s is missing field author", role)
	}
	if b.Text == nil {
		return Turn{}, errors.Wrapf(ErrInvalidTurn, "%s is missing field prompt", role)
	}
	return Turn{Role: role, Author: *b.Author, Text: *b.Text}, nil
}

func (t Turn) body() turnBody {
	author, text := t.Author, t.Text
	return turnBody{Author: &author, Text: &text}
}

func (t Turn) MarshalJSON() ([]byte, error) {
	if _, err := parseRole(string(t.Role)); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]turnBody{string(t.Role): t.body()})
}

func (t *Turn) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return errors.Wrap(err, "could not decode turn")
	}
	if len(tagged) != 1 {
		return errors.Wrapf(ErrInvalidTurn, "expected exactly one variant, got %d", len(tagged))
	}
	for tag, raw := range tagged {
		role, err := parseRole(tag)
		if err != nil {
			return err
		}
		var b turnBody
		if err := json.Unmarshal(raw, &b); err != nil {
			return errors.Wrapf(err, "could not decode %s", tag)
		}
		turn, err := b.toTurn(role)
		if err != nil {
			return err
		}
		*t = turn
	}
	return nil
}

func (t Turn) MarshalYAML() (interface{}, error) {
	if _, err := parseRole(string(t.Role)); err != nil {
		return nil, err
	}
	return map[string]turnBody{string(t.Role): t.body()}, nil
}

func (t *Turn) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.Wrapf(ErrInvalidTurn, "line %d: expected a mapping", value.Line)
	}
	if len(value.Content) != 2 {
		return errors.Wrapf(ErrInvalidTurn, "line %d: expected exactly one variant, got %d", value.Line, len(value.Content)/2)
	}
	role, err := parseRole(value.Content[0].Value)
	if err != nil {
		return err
	}
	var b turnBody
	if err := value.Content[1].Decode(&b); err != nil {
		return errors.Wrapf(err, "could not decode %s", role)
	}
	turn, err := b.toTurn(role)
	if err != nil {
		return err
	}
	*t = turn
	return nil
}

// A Dialogue is serialized as a plain array of turns, never as null.

func (d Dialogue) MarshalJSON() ([]byte, error) {
	turns := d.turns
	if turns == nil {
		turns = []Turn{}
	}
	return json.Marshal(turns)
}

func (d *Dialogue) UnmarshalJSON(data []byte) error {
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return err
	}
	d.turns = turns
	return nil
}

func (d Dialogue) MarshalYAML() (interface{}, error) {
	turns := d.turns
	if turns == nil {
		turns = []Turn{}
	}
	return turns, nil
}

func (d *Dialogue) UnmarshalYAML(value *yaml.Node) error {
	var turns []Turn
	if err := value.Decode(&turns); err != nil {
		return err
	}
	d.turns = turns
	return nil
}
