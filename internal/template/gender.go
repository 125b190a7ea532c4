package template

import "strings"

// InferGender guesses grammatical gender from Russian name endings so
// templates can pick the right verb forms. The patronymic is the strongest
// signal (-вич/-ич male, -вна/-чна female); the given name ending is the
// fallback. Ambiguous input defaults to male.
func InferGender(firstName, patronymic string) string {
	p := strings.ToLower(strings.TrimSpace(patronymic))
	switch {
	case strings.HasSuffix(p, "вна"), strings.HasSuffix(p, "чна"):
		return "female"
	case strings.HasSuffix(p, "вич"), strings.HasSuffix(p, "ич"):
		return "male"
	}

	f := strings.ToLower(strings.TrimSpace(firstName))
	if strings.HasSuffix(f, "а") || strings.HasSuffix(f, "я") {
		return "female"
	}
	return "male"
}
