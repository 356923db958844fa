package tokens

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupErrorsTotal tracks failed ERC20 metadata reads.
	LookupErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "triarb_token_metadata_errors_total",
		Help: "Total number of failed token metadata lookups",
	})
)
