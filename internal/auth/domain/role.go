// Package domain defines the core authorization entities: roles, users and
// the signed token claims that carry a user's resolved activity bitmap.
package domain

// Role is a named, reusable bundle of activities, assignable to multiple
// users. Users is the derived back-reference set of usernames that currently
// include this role.
type Role struct {
	Name       string
	Activities []string
	Users      []string
}
