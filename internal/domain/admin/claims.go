package admin

// IsAdmin reports whether a claims set grants administrator access. Besides
// the admin flag written by this package it accepts the role shapes the
// frontend has used over time.
func IsAdmin(claims map[string]any) bool {
	if claims == nil {
		return false
	}
	// Check admin flag
	if admin, ok := claims[ClaimKey].(bool); ok && admin {
		return true
	}
	// Check role field
	if role, ok := claims["role"].(string); ok && role == "admin" {
		return true
	}
	// Check roles map
	if roles, ok := claims["roles"].(map[string]any); ok {
		if b, ok := roles["admin"].(bool); ok && b {
			return true
		}
	}
	// Check roles array
	if roles, ok := claims["roles"].([]any); ok {
		for _, r := range roles {
			if str, ok := r.(string); ok && str == "admin" {
				return true
			}
		}
	}
	return false
}

// grantClaims builds the claims object written by Grant.
func grantClaims(existing map[string]any, merge bool) map[string]any {
	out := map[string]any{}
	if merge {
		for k, v := range existing {
			out[k] = v
		}
	}
	out[ClaimKey] = true
	return out
}

// revokeClaims drops ClaimKey and keeps everything else.
func revokeClaims(existing map[string]any) map[string]any {
	out := make(map[string]any, len(existing))
	for k, v := range existing {
		if k == ClaimKey {
			continue
		}
		out[k] = v
	}
	return out
}
