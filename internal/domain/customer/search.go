package customer

import "strings"

const maxSuggestions = 5

// Filter returns the customers matching term, preserving order.
// Name, address, email and notes match case-insensitively; phone matches as typed.
func Filter(customers []*Customer, term string) []*Customer {
	if term == "" {
		return customers
	}
	lower := strings.ToLower(term)

	matches := make([]*Customer, 0)
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(strings.ToLower(c.Address), lower) ||
			strings.Contains(c.Phone, term) ||
			strings.Contains(strings.ToLower(c.Email), lower) ||
			strings.Contains(strings.ToLower(c.Notes), lower) {
			matches = append(matches, c)
		}
	}
	return matches
}

// Suggestions returns at most five matches for a non-empty term.
func Suggestions(customers []*Customer, term string) []*Customer {
	if term == "" {
		return []*Customer{}
	}
	matches := Filter(customers, term)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}
