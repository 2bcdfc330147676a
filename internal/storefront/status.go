package storefront

type Status string

// Orders are immutable once placed, so received is the only status.
const StatusReceived Status = "received"
