//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// Race builds run slower; DefaultCost (10) keeps the floor we require.
	return bcrypt.DefaultCost
}
