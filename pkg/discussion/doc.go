// Package discussion stores chat messages, optionally scoped to a project.
package discussion
