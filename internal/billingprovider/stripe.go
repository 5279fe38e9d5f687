// Package billingprovider содержит клиент биллинговой системы Stripe.
// Stripe — источник истины по подпискам: локальное хранилище только
// зеркалирует его события, а клиент выдаёт эфемерные redirect-URL
// для checkout и биллинг-портала, не раскрывая ключи браузеру.
package billingprovider

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/tdpk/hubpass/internal/models"
)

// Ключи метаданных, которыми checkout-сессия связывается с участником
// и тарифным планом. Реконсилятор отклоняет события без этих полей.
const (
	MetaMemberUID = "member_uid"
	MetaPlanCode  = "plan_code"
)

// Client — клиент Stripe с учётными данными и redirect-адресами.
type Client struct {
	webhookSecret   string
	successURL      string
	cancelURL       string
	portalReturnURL string
}

// NewClient создаёт клиент Stripe. Секретный ключ устанавливается
// процесс-глобально один раз при старте.
func NewClient(secretKey, webhookSecret, successURL, cancelURL, portalReturnURL string) *Client {
	stripe.Key = secretKey
	return &Client{
		webhookSecret:   webhookSecret,
		successURL:      successURL,
		cancelURL:       cancelURL,
		portalReturnURL: portalReturnURL,
	}
}

// CreateCustomer создаёт клиента Stripe, привязанного к участнику.
func (c *Client) CreateCustomer(_ context.Context, memberUID, email, name string) (string, error) {
	const op = "billingprovider.CreateCustomer"
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
		Metadata: map[string]string{
			MetaMemberUID: memberUID,
		},
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession создаёт hosted checkout-сессию подписки с одной
// позицией, собранной из каталожного плана. Метаданные сессии и будущей
// подписки несут member_uid и plan_code для реконсилятора.
func (c *Client) CreateCheckoutSession(_ context.Context, customerID string, plan *models.Plan, memberUID, couponCode string) (string, error) {
	const op = "billingprovider.CreateCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(customerID),
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(plan.Currency),
					UnitAmount: stripe.Int64(plan.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name),
					},
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(plan.Interval),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				MetaMemberUID: memberUID,
				MetaPlanCode:  plan.Code,
			},
		},
		Metadata: map[string]string{
			MetaMemberUID: memberUID,
			MetaPlanCode:  plan.Code,
		},
	}
	if couponCode != "" {
		// Легитимность купона проверяет сам Stripe
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(couponCode)},
		}
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sess.URL, nil
}

// CreatePortalSession создаёт hosted-сессию биллинг-портала клиента.
func (c *Client) CreatePortalSession(_ context.Context, customerID string) (string, error) {
	const op = "billingprovider.CreatePortalSession"
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(c.portalReturnURL),
	}
	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sess.URL, nil
}

// ConstructEvent проверяет подпись вебхука и возвращает разобранное
// событие. Вызывается до любого разбора тела запроса.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
}

// GetSubscription запрашивает у Stripe объект подписки и нормализует его.
// Используется при обработке checkout.session.completed: статус и границы
// периода берутся из объекта биллинга, не вычисляются локально.
func (c *Client) GetSubscription(_ context.Context, providerSubID string) (*models.SubscriptionEvent, error) {
	const op = "billingprovider.GetSubscription"
	sub, err := subscription.Get(providerSubID, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	event := SubscriptionEventFromStripe(sub)
	return &event, nil
}

// SubscriptionEventFromStripe нормализует объект подписки Stripe
// в доменное событие.
func SubscriptionEventFromStripe(sub *stripe.Subscription) models.SubscriptionEvent {
	event := models.SubscriptionEvent{
		ProviderSubID: sub.ID,
		Status:        models.SubscriptionStatus(sub.Status),
		Metadata:      sub.Metadata,
	}
	if sub.Customer != nil {
		event.ProviderCustomerID = sub.Customer.ID
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0).UTC()
		event.CanceledAt = &t
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			event.Amount = item.Price.UnitAmount
			event.Currency = string(item.Price.Currency)
		}
		if item.CurrentPeriodStart > 0 {
			event.CurrentPeriodStart = time.Unix(item.CurrentPeriodStart, 0).UTC()
		}
		if item.CurrentPeriodEnd > 0 {
			event.CurrentPeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
		}
	}
	return event
}
