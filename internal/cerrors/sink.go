package cerrors

// Sink accumulates reports produced across a best-effort compilation pass.
// It is not safe for concurrent use; one Sink belongs to one Session,
// whose pipeline is single-threaded and synchronous.
type Sink struct {
	errors   []*Report
	warnings []*Report
}

// Report files r, routing it to the error or warning list by its Warning flag.
func (s *Sink) Report(r *Report) {
	if r == nil {
		return
	}
	if r.Warning {
		s.warnings = append(s.warnings, r)
		return
	}
	s.errors = append(s.errors, r)
}

// Errors returns the accumulated error-severity reports in emission order.
func (s *Sink) Errors() []*Report { return s.errors }

// Warnings returns the accumulated warning-severity reports in emission order.
func (s *Sink) Warnings() []*Report { return s.warnings }

// HasErrors reports whether any error-severity report has been filed.
func (s *Sink) HasErrors() bool { return len(s.errors) > 0 }

// All returns errors followed by warnings, the order the text stream is
// rendered in (an ordered list of "<file>:<line>:<col>: <message>" lines
// with warnings appended to the same stream).
func (s *Sink) All() []*Report {
	all := make([]*Report, 0, len(s.errors)+len(s.warnings))
	all = append(all, s.errors...)
	all = append(all, s.warnings...)
	return all
}
