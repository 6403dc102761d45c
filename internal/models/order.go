package models

import "time"

// OrderStatus represents the possible states of a customer order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
)

// knownStatuses is the closed set of labels a caller may request.
var knownStatuses = map[OrderStatus]bool{
	OrderStatusPending:   true,
	OrderStatusAccepted:  true,
	OrderStatusPreparing: true,
	OrderStatusReady:     true,
	OrderStatusCompleted: true,
}

// KnownStatus reports whether s is one of the five valid order statuses.
func KnownStatus(s OrderStatus) bool {
	return knownStatuses[s]
}

// Order represents a customer order. The *_At pointers are timestamp slots:
// exactly the slots for statuses the order has actually reached are populated,
// creation time itself living in CreatedAt.
type Order struct {
	ID            uint        `gorm:"primary_key" json:"id"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"-"`
	CustomerName  string      `gorm:"not null" json:"customerName"`
	CustomerPhone string      `json:"customerPhone"`
	Status        OrderStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	AcceptedAt    *time.Time  `json:"acceptedAt"`
	PreparingAt   *time.Time  `json:"preparingAt"`
	ReadyAt       *time.Time  `json:"readyAt"`
	CompletedAt   *time.Time  `json:"completedAt"`
	Items         []OrderItem `gorm:"foreignkey:OrderID" json:"items"`
}

// TableName sets the table name for Order
func (Order) TableName() string {
	return "orders"
}

// statusSlots maps each status to its timestamp slot. Pending has no slot of
// its own; it is covered by CreatedAt.
var statusSlots = map[OrderStatus]func(*Order, time.Time){
	OrderStatusAccepted:  func(o *Order, t time.Time) { o.AcceptedAt = &t },
	OrderStatusPreparing: func(o *Order, t time.Time) { o.PreparingAt = &t },
	OrderStatusReady:     func(o *Order, t time.Time) { o.ReadyAt = &t },
	OrderStatusCompleted: func(o *Order, t time.Time) { o.CompletedAt = &t },
}

// RecordStatusTime stamps the timestamp slot for s, if one exists.
func (o *Order) RecordStatusTime(s OrderStatus, t time.Time) {
	if set, ok := statusSlots[s]; ok {
		set(o, t)
	}
}

// StatusTime returns the recorded timestamp for s, or nil if the order has
// not reached that status.
func (o *Order) StatusTime(s OrderStatus) *time.Time {
	switch s {
	case OrderStatusPending:
		t := o.CreatedAt
		return &t
	case OrderStatusAccepted:
		return o.AcceptedAt
	case OrderStatusPreparing:
		return o.PreparingAt
	case OrderStatusReady:
		return o.ReadyAt
	case OrderStatusCompleted:
		return o.CompletedAt
	}
	return nil
}

// Total sums price × quantity over the order's items. Items must be loaded
// with their products.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		if item.Product != nil {
			total += item.Product.Price * float64(item.Quantity)
		}
	}
	return total
}

// OrderItem represents one line of an order. Customizations holds the raw
// JSON customization bag as received at checkout; it is immutable afterwards.
type OrderItem struct {
	ID             uint      `gorm:"primary_key" json:"id"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
	OrderID        uint      `gorm:"not null" json:"-"`
	ProductID      uint      `gorm:"not null" json:"productId"`
	Product        *Product  `json:"-"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	Customizations string    `gorm:"type:text" json:"-"`
}

// TableName sets the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderView is the wire representation of an order, used both for API
// responses and for realtime event payloads.
type OrderView struct {
	ID            uint            `json:"id"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	AcceptedAt    *time.Time      `json:"acceptedAt"`
	PreparingAt   *time.Time      `json:"preparingAt"`
	ReadyAt       *time.Time      `json:"readyAt"`
	CompletedAt   *time.Time      `json:"completedAt"`
	Items         []OrderItemView `json:"items"`
}

// OrderItemView is the wire representation of one order line.
type OrderItemView struct {
	ID             uint             `json:"id"`
	ProductID      uint             `json:"productId"`
	ProductName    string           `json:"productName"`
	Quantity       int              `json:"quantity"`
	Customizations CustomizationBag `json:"customizations"`
}

// View builds the wire representation of the order. Malformed customization
// payloads are rendered as empty bags rather than failing the snapshot.
func (o *Order) View() OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, item := range o.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		bag, err := DecodeCustomizations(item.Customizations)
		if err != nil {
			bag = CustomizationBag{}
		}
		items = append(items, OrderItemView{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    name,
			Quantity:       item.Quantity,
			Customizations: bag,
		})
	}
	return OrderView{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		AcceptedAt:    o.AcceptedAt,
		PreparingAt:   o.PreparingAt,
		ReadyAt:       o.ReadyAt,
		CompletedAt:   o.CompletedAt,
		Items:         items,
	}
}
