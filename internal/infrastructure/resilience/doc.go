/*
Package resilience provides the circuit breaker that guards calls to the
remote session server.

# Usage

	breaker := resilience.New("sessions", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsFailure: func(err error) bool {
			return status.Code(err) == codes.Unavailable
		},
	})

	outcome, err := resilience.Call(ctx, breaker, func(ctx context.Context) (types.OpenOutcome, error) {
		return client.openGrain(ctx, grainID)
	})

# States

	Closed --[ReadyToTrip]-> Open --[Timeout]-> Half-Open --[MaxRequests successes]-> Closed
	                                              |
	                                          [failure]
	                                              v
	                                            Open

Each transition starts a new generation; results of calls admitted in an
earlier generation are ignored.
*/
package resilience
