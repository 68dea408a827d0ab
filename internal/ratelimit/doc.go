// Package ratelimit provides the courtesy delay between page requests.
package ratelimit
