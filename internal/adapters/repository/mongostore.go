package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/opskitchen/shiftboard/internal/domain/model"
	"github.com/opskitchen/shiftboard/pkg/metrics"
)

// attributedOrderDocument is the Mongo shape of an attributed order.
// The transaction id is the document id, which makes SaveAll a natural
// replace-with-upsert.
type attributedOrderDocument struct {
	ID               string    `bson:"_id"`
	StoreID          string    `bson:"storeId"`
	LeaderID         string    `bson:"leaderId"`
	LeaderName       string    `bson:"leaderName"`
	LeaderExternalID string    `bson:"leaderExternalId"`
	DisplayNumber    string    `bson:"displayNumber"`
	OpenedAt         time.Time `bson:"openedAt"`
	ClosedAt         time.Time `bson:"closedAt"`
	NetAmount        float64   `bson:"netAmount"`
	GuestCount       int       `bson:"guestCount"`
	CheckID          string    `bson:"checkId"`
	PaymentStatus    string    `bson:"paymentStatus"`
	AttributedAt     time.Time `bson:"attributedAt"`
}

// MongoStore persists attributed orders in a MongoDB collection.
type MongoStore struct {
	orders *mongo.Collection
}

// NewMongoStore binds the store to the given collection.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{orders: db.Collection(collection)}
}

// SaveAll replaces each order's document, inserting when absent.
func (s *MongoStore) SaveAll(ctx context.Context, orders []model.AttributedOrder) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(orders))
	for _, order := range orders {
		doc := toDocument(order)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	result, err := s.orders.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if total, err := s.Count(ctx); err == nil {
		metrics.UpdateStoredOrders(total)
	}
	return int(result.UpsertedCount), nil
}

// ByLeader returns a leader's orders opened within [from, to].
func (s *MongoStore) ByLeader(ctx context.Context, leaderID string, from, to time.Time) ([]model.AttributedOrder, error) {
	return s.find(ctx, bson.M{
		"leaderId": leaderID,
		"openedAt": bson.M{"$gte": from, "$lte": to},
	})
}

// ByWindow returns all of a store's orders opened within [from, to].
func (s *MongoStore) ByWindow(ctx context.Context, storeID string, from, to time.Time) ([]model.AttributedOrder, error) {
	return s.find(ctx, bson.M{
		"storeId":  storeID,
		"openedAt": bson.M{"$gte": from, "$lte": to},
	})
}

// Count returns the number of orders in the collection.
func (s *MongoStore) Count(ctx context.Context) (int, error) {
	n, err := s.orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return int(n), nil
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]model.AttributedOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "openedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.orders.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer cursor.Close(ctx)

	orders := make([]model.AttributedOrder, 0)
	for cursor.Next(ctx) {
		var doc attributedOrderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		orders = append(orders, fromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return orders, nil
}

func toDocument(order model.AttributedOrder) attributedOrderDocument {
	return attributedOrderDocument{
		ID:               order.ID,
		StoreID:          order.StoreID,
		LeaderID:         order.LeaderID,
		LeaderName:       order.LeaderName,
		LeaderExternalID: order.LeaderExternalID,
		DisplayNumber:    order.Transaction.DisplayNumber,
		OpenedAt:         order.Transaction.OpenedAt,
		ClosedAt:         order.Transaction.ClosedAt,
		NetAmount:        order.Transaction.NetAmount,
		GuestCount:       order.Transaction.GuestCount,
		CheckID:          order.Transaction.CheckID,
		PaymentStatus:    order.Transaction.PaymentStatus,
		AttributedAt:     order.AttributedAt,
	}
}

func fromDocument(doc attributedOrderDocument) model.AttributedOrder {
	return model.AttributedOrder{
		ID:      doc.ID,
		StoreID: doc.StoreID,
		Transaction: model.Transaction{
			ID:            doc.ID,
			DisplayNumber: doc.DisplayNumber,
			OpenedAt:      doc.OpenedAt,
			ClosedAt:      doc.ClosedAt,
			NetAmount:     doc.NetAmount,
			GuestCount:    doc.GuestCount,
			CheckID:       doc.CheckID,
			PaymentStatus: doc.PaymentStatus,
		},
		LeaderID:         doc.LeaderID,
		LeaderName:       doc.LeaderName,
		LeaderExternalID: doc.LeaderExternalID,
		AttributedAt:     doc.AttributedAt,
	}
}
