package differ

// Option is a functional option for configuring Differ
type Option func(*differ)

// WithIgnoredFields sets fields to ignore during comparison. Names are the
// JSON keys of the event record.
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithDeepComparison enables/disables comparison of the list fields
// (categories, tags, labels).
func WithDeepComparison(enabled bool) Option {
	return func(d *differ) {
		d.deepComparison = enabled
	}
}
