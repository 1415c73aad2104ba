// Package store is a small product catalog bound with `oxm` tags. The CLI
// binds it by default, and the scaffold scanner is tested against it.
package store

import (
	"time"

	"oxmapper/attachment"
)

// Namespace is the catalog namespace, declared under the "st" prefix.
const Namespace = "urn:oxmapper:store"

// Namespaces are the prefixes used in the tags of this package.
var Namespaces = map[string]string{"st": Namespace}

// Product is an item for sale. Its photo travels as an MTOM attachment when
// the marshaller writes an XOP package; the thumbnail is always inline.
type Product struct {
	XMLName struct{} `oxm:"st:product"`

	ID          int64     `oxm:"@id"`
	SKU         string    `oxm:"st:sku"`
	Name        string    `oxm:"st:name"`
	Description string    `oxm:"st:description,null=n/a"`
	PriceCents  int64     `oxm:"st:price"`
	CreatedAt   time.Time `oxm:"st:created"`

	// Photo is the full-size image.
	Photo     []byte `oxm:"st:media/st:photo,mime=image/jpeg"`
	Thumbnail []byte `oxm:"st:media/st:thumbnail,inline"`

	// Manual is a referenced document, sent as a swaRef attachment.
	Manual *attachment.DataHandler `oxm:"st:manual,swaref"`

	// Inventory is not part of the document.
	Inventory int
}

// Order is a placed order with scanned receipts.
type Order struct {
	XMLName struct{} `oxm:"st:order"`

	ID         int64       `oxm:"@id"`
	CustomerID int64       `oxm:"st:customer"`
	Status     OrderStatus `oxm:"st:status"`
	TotalCents int64       `oxm:"st:total"`
	OrderedAt  time.Time   `oxm:"st:ordered"`
	Signature  *[]byte     `oxm:"st:signature,schema=hexBinary"`

	// Receipts holds one scanned page per element.
	Receipts [][]byte `oxm:"st:receipts/st:page,list"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)
