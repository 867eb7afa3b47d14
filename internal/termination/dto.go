package termination

// EndStayRequest asks to end the caller's rental stay.
type EndStayRequest struct {
	ImmediateLeave bool `json:"immediate_leave"`
}
