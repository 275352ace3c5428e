package types

import "github.com/m-mizutani/goerr/v2"

// Role indicates who produced a memory entry
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (x Role) String() string { return string(x) }

// Validate checks if the Role is one of the known values
func (x Role) Validate() error {
	switch x {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return goerr.New("invalid role", goerr.V("role", string(x)))
	}
}
