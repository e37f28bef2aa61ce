package errs

import "fmt"

// Wrap chains ext under base so both stay reachable through errors.Is.
func Wrap(base, ext error) error {
	if ext == nil {
		return base
	}

	return fmt.Errorf("%w: %w", base, ext)
}

func Wrapf(base error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", base, fmt.Sprintf(format, args...))
}
