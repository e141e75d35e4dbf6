package outbox

// topic is the single outbox table topic the forwarder drains; the
// destination topic travels in the forwarder envelope.
const topic = "events_to_forward"
