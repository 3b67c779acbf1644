package aggregates

// Contract states what an aggregate writes and how its transactions behave.
type Contract struct {
	Name string
	// Tables are written together inside one transaction.
	Tables []string
	// AppendOnly aggregates never update or delete rows they wrote earlier.
	AppendOnly bool
	// WriteAttempts bounds how often a transaction with a transient failure is run.
	WriteAttempts int
}

type Aggregate interface {
	Contract() Contract
}

func (c Contract) Attempts() int {
	if c.WriteAttempts < 1 {
		return 1
	}
	return c.WriteAttempts
}

// Op names one operation of the aggregate for errors, spans and metrics.
func (c Contract) Op(method string) string {
	if c.Name == "" {
		return method
	}
	return c.Name + "." + method
}
