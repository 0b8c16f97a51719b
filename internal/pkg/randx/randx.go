/*
Package randx provides functions for generating unique identifiers.

It is primarily used to generate user record IDs, websocket client IDs and message IDs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// ClientIDLength is the length of the random part of a websocket client ID.
	ClientIDLength = 8
)

// UserID generates a standard UUID v4 string to serve as the identifier of a user record.
func UserID() string {
	return uuid.New().String()
}

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// ClientID generates a Base62 identifier with a "client_" prefix using crypto/rand.
func ClientID() (string, error) {
	result := make([]byte, ClientIDLength)

	for i := range ClientIDLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for client id: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return "client_" + string(result), nil
}
