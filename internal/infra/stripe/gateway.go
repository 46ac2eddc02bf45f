package stripe

import (
	"fmt"
	"io"
	"net/http"

	stripesdk "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// CheckoutParams carries everything needed to open a hosted checkout page.
// UserID goes into the session metadata so the webhook can resolve the owner
// from the event payload alone.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// Gateway is the process-wide handle on the Stripe API. Constructed once in
// main and injected into handlers; tests substitute a fake.
type Gateway interface {
	FindCustomerByEmail(email string) (*stripesdk.Customer, error)
	CreateCustomer(email, userID string) (*stripesdk.Customer, error)
	TagCustomer(customerID, userID string) (*stripesdk.Customer, error)
	CreateSubscriptionCheckout(p CheckoutParams) (*stripesdk.CheckoutSession, error)
	ListActiveRecurringPrices() ([]*stripesdk.Price, error)
	InvoicePDF(paymentIntentID string) ([]byte, error)
}

type apiGateway struct {
	api  *client.API
	http *http.Client
}

func NewGateway(secretKey string) Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &apiGateway{api: api, http: http.DefaultClient}
}

// FindCustomerByEmail returns the first customer matching email, or nil when
// none exists. Lookup-by-email is not race-free for brand-new emails; see
// the checkout handler for how that is handled.
func (g *apiGateway) FindCustomerByEmail(email string) (*stripesdk.Customer, error) {
	params := &stripesdk.CustomerListParams{Email: stripesdk.String(email)}
	params.Limit = stripesdk.Int64(1)

	it := g.api.Customers.List(params)
	for it.Next() {
		return it.Customer(), nil
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return nil, nil
}

func (g *apiGateway) CreateCustomer(email, userID string) (*stripesdk.Customer, error) {
	cus, err := g.api.Customers.New(&stripesdk.CustomerParams{
		Email:    stripesdk.String(email),
		Metadata: map[string]string{"user_id": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return cus, nil
}

func (g *apiGateway) TagCustomer(customerID, userID string) (*stripesdk.Customer, error) {
	cus, err := g.api.Customers.Update(customerID, &stripesdk.CustomerParams{
		Metadata: map[string]string{"user_id": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return cus, nil
}

func (g *apiGateway) CreateSubscriptionCheckout(p CheckoutParams) (*stripesdk.CheckoutSession, error) {
	params := &stripesdk.CheckoutSessionParams{
		Customer:   stripesdk.String(p.CustomerID),
		Mode:       stripesdk.String(string(stripesdk.CheckoutSessionModeSubscription)),
		SuccessURL: stripesdk.String(p.SuccessURL),
		CancelURL:  stripesdk.String(p.CancelURL),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{
			{Price: stripesdk.String(p.PriceID), Quantity: stripesdk.Int64(1)},
		},
		BillingAddressCollection: stripesdk.String("required"),
		ClientReferenceID:        stripesdk.String(p.UserID),
		Metadata:                 map[string]string{"user_id": p.UserID},
		SubscriptionData: &stripesdk.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": p.UserID},
		},
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return s, nil
}

func (g *apiGateway) ListActiveRecurringPrices() ([]*stripesdk.Price, error) {
	params := &stripesdk.PriceListParams{}
	params.Active = stripesdk.Bool(true)
	params.Type = stripesdk.String("recurring")
	params.AddExpand("data.product")

	var prices []*stripesdk.Price
	it := g.api.Prices.List(params)
	for it.Next() {
		prices = append(prices, it.Price())
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	return prices, nil
}

// InvoicePDF resolves paymentIntent -> invoice -> hosted PDF and returns the
// PDF bytes.
func (g *apiGateway) InvoicePDF(paymentIntentID string) ([]byte, error) {
	pi, err := g.api.PaymentIntents.Get(paymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	if pi.Invoice == nil || pi.Invoice.ID == "" {
		return nil, fmt.Errorf("payment intent %s has no invoice", paymentIntentID)
	}

	inv, err := g.api.Invoices.Get(pi.Invoice.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.InvoicePDF == "" {
		return nil, fmt.Errorf("invoice %s has no pdf", inv.ID)
	}

	resp, err := g.http.Get(inv.InvoicePDF)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch invoice pdf: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
