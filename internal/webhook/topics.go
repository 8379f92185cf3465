package webhook

import "strings"

// Topic is a Market22 webhook event name such as "order.paid".
type Topic string

const (
	TopicProductApproved    Topic = "product.approved"
	TopicProductUpdated     Topic = "product.updated"
	TopicProductDeactivated Topic = "product.deactivated"

	TopicOrderCreated                   Topic = "order.created"
	TopicOrderPaid                      Topic = "order.paid"
	TopicOrderAbandoned                 Topic = "order.abandoned"
	TopicOrderSubscriptionRenewed       Topic = "order.subscription_renewed"
	TopicOrderSubscriptionPaymentFailed Topic = "order.subscription_payment_failed"
	TopicOrderSubscriptionUpdated       Topic = "order.subscription_updated"
	TopicOrderSubscriptionCancelled     Topic = "order.subscription_cancelled"
)

var knownTopics = map[Topic]bool{
	TopicProductApproved:                true,
	TopicProductUpdated:                 true,
	TopicProductDeactivated:             true,
	TopicOrderCreated:                   true,
	TopicOrderPaid:                      true,
	TopicOrderAbandoned:                 true,
	TopicOrderSubscriptionRenewed:       true,
	TopicOrderSubscriptionPaymentFailed: true,
	TopicOrderSubscriptionUpdated:       true,
	TopicOrderSubscriptionCancelled:     true,
}

// NormalizeTopic converts loosely formatted event names into the dotted catalog form.
// Examples:
// - " Order.Paid " -> "order.paid"
// - "order/subscription-renewed" -> "order.subscription_renewed"
func NormalizeTopic(topic string) Topic {
	t := strings.TrimSpace(strings.ToLower(topic))
	t = strings.ReplaceAll(t, "/", ".")
	t = strings.ReplaceAll(t, "-", "_")
	for strings.Contains(t, "..") {
		t = strings.ReplaceAll(t, "..", ".")
	}
	return Topic(strings.Trim(t, "._"))
}

func (t Topic) Known() bool {
	return knownTopics[t]
}

// Resource returns "order" or "product" for catalog topics and "" otherwise.
func (t Topic) Resource() string {
	if !t.Known() {
		return ""
	}
	res, _, _ := strings.Cut(string(t), ".")
	return res
}

func (t Topic) String() string {
	return string(t)
}
