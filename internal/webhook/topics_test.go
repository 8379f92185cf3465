package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTopic(t *testing.T) {
	cases := map[string]Topic{
		" Order.Paid ":                 TopicOrderPaid,
		"order/subscription-renewed":   TopicOrderSubscriptionRenewed,
		"PRODUCT.DEACTIVATED":          TopicProductDeactivated,
		"order..created.":              TopicOrderCreated,
		"order.subscription_cancelled": TopicOrderSubscriptionCancelled,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTopic(in), in)
	}
}

func TestTopic_Resource(t *testing.T) {
	assert.Equal(t, "order", TopicOrderAbandoned.Resource())
	assert.Equal(t, "product", TopicProductApproved.Resource())
	assert.Equal(t, "", Topic("customer.created").Resource())
	assert.False(t, Topic("order.refunded").Known())
}

func TestDecodeEnvelope(t *testing.T) {
	body := []byte(`{"id":"evt_1","event":"order.paid","orderId":"abc123","data":{"amount":"19.90","currency":"EUR"}}`)
	env, topic, err := DecodeEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, TopicOrderPaid, topic)
	assert.Equal(t, "abc123", env.OrderID)
	assert.Equal(t, "evt_1", env.EventKey("1700000000000", body))

	d, err := env.OrderData()
	require.NoError(t, err)
	assert.Equal(t, "19.9", d.Amount.String())
	assert.Equal(t, "EUR", d.Currency)
}

func TestDecodeEnvelope_Rejections(t *testing.T) {
	_, _, err := DecodeEnvelope([]byte(`{"event":"order.refunded","orderId":"x"}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, _, err = DecodeEnvelope([]byte(`{"event":"order.paid"}`))
	assert.Error(t, err)

	_, _, err = DecodeEnvelope([]byte(`{"event":"product.updated"}`))
	assert.Error(t, err)

	_, _, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestEnvelope_EventKeyFallsBackToBodyHash(t *testing.T) {
	body := []byte(`{"event":"order.created","orderId":"o1"}`)
	env, _, err := DecodeEnvelope(body)
	require.NoError(t, err)
	key := env.EventKey("1700000000000", body)
	assert.Len(t, key, 64)
	assert.Equal(t, key, env.EventKey("1700000000000", body))
	assert.NotEqual(t, key, env.EventKey("1702592000000", body), "same body signed at another time is another event")
}
