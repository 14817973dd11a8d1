// Package auth implements the authorization engine: a tagged principal type
// and the pure policy predicates every handler consults.  Ownership and
// public visibility are the only two grants in the system and the admin flag
// is a single universal override, so the whole policy lives here rather than
// being re-derived per endpoint.  Nothing in this package touches the
// database or the request; callers resolve the principal first and pass
// loaded records in.
package auth

import "github.com/Musah95/wapi-2/internal/model"

// Kind discriminates the principal variants.
type Kind int

const (
	// KindAnonymous is a request with no credential at all.
	KindAnonymous Kind = iota
	// KindUser is a request authenticated with a user bearer token.
	KindUser
	// KindStation is a request authenticated with a station API key.
	KindStation
)

// Principal is the resolved identity a request is evaluated under.  Exactly
// one of User/Station is set, matching Kind; both are nil for anonymous.
type Principal struct {
	Kind    Kind
	User    *model.User
	Station *model.Station
}

// Anonymous returns the principal for an unauthenticated request.
func Anonymous() Principal { return Principal{Kind: KindAnonymous} }

// ForUser returns the principal for a request carrying a valid user token.
func ForUser(u *model.User) Principal { return Principal{Kind: KindUser, User: u} }

// ForStation returns the principal for a request carrying a valid station
// API key.
func ForStation(s *model.Station) Principal { return Principal{Kind: KindStation, Station: s} }

// IsAdmin reports whether the principal is an authenticated user with the
// admin override.  Station credentials never carry admin rights.
func (p Principal) IsAdmin() bool {
	return p.Kind == KindUser && p.User != nil && p.User.IsAdmin
}

// CanManageStation reports whether the principal may update or delete the
// station: admins always, otherwise only the owning user.  Anonymous and
// station principals can never mutate station records.
func (p Principal) CanManageStation(s *model.Station) bool {
	if p.Kind != KindUser || p.User == nil || s == nil {
		return false
	}
	return p.User.IsAdmin || p.User.Username == s.Owner
}

// CanViewStation reports whether the principal may read the station's
// details or historical data: public stations are visible to everyone,
// private ones only to whoever could manage them.
func (p Principal) CanViewStation(s *model.Station) bool {
	if s == nil {
		return false
	}
	return s.IsPublic || p.CanManageStation(s)
}

// ListScope describes how a station listing must be filtered for the
// principal: admins see every station, other users see only their own.
// This is a filter, not a per-row deny; the listing never returns 403.
// The second return is false when the principal may not list at all.
func (p Principal) ListScope() (owner string, all bool, ok bool) {
	if p.Kind != KindUser || p.User == nil {
		return "", false, false
	}
	if p.User.IsAdmin {
		return "", true, true
	}
	return p.User.Username, false, true
}
