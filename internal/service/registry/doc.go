// Package registry owns the set of configured notification recipients
// (vendors). All mutation goes through Add/Update/Remove; nothing else in
// the system holds recipient state. Registration order is preserved because
// it is meaningful for display and for dispatch ordering.
package registry
