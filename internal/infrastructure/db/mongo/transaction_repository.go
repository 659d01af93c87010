package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ledgerly/budget-api/internal/core/domain"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

const collectionTransactions = "transactions"

type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection(collectionTransactions)}
}

type mongoTransaction struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Amount          float64            `bson:"amount"`
	ConvertedAmount float64            `bson:"convertedAmount"`
	Currency        string             `bson:"currency"`
	Vendor          string             `bson:"vendor"`
	Category        string             `bson:"category"`
	Date            time.Time          `bson:"date"`
	Budget          primitive.ObjectID `bson:"budget"`
	User            primitive.ObjectID `bson:"user"`
}

func (t mongoTransaction) toDomain() *domain.Transaction {
	return &domain.Transaction{
		ID:              t.ID.Hex(),
		Amount:          t.Amount,
		ConvertedAmount: t.ConvertedAmount,
		Currency:        t.Currency,
		Vendor:          t.Vendor,
		Category:        t.Category,
		Date:            t.Date.UTC(),
		BudgetID:        t.Budget.Hex(),
		UserID:          t.User.Hex(),
	}
}

// scope matches the transactions of one owned budget, optionally narrowed
// to a single transaction id.
func scope(ownerID, budgetID string, id ...string) (bson.M, error) {
	ids, err := objectIDs(append([]string{ownerID, budgetID}, id...)...)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"user": ids[0], "budget": ids[1]}
	if len(ids) > 2 {
		filter["_id"] = ids[2]
	}
	return filter, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ids, err := objectIDs(t.UserID, t.BudgetID)
	if err != nil {
		return nil, err
	}
	doc := mongoTransaction{
		Amount:          t.Amount,
		ConvertedAmount: t.ConvertedAmount,
		Currency:        t.Currency,
		Vendor:          t.Vendor,
		Category:        t.Category,
		Date:            t.Date.UTC(),
		User:            ids[0],
		Budget:          ids[1],
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, storageError("insert transaction", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toDomain(), nil
}

// List returns the transactions of a budget. With a limit they come most
// recent date first.
func (r *TransactionRepository) List(ctx context.Context, f ports.TransactionFilter) ([]*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := scope(f.OwnerID, f.BudgetID)
	if err != nil {
		return []*domain.Transaction{}, nil
	}

	opts := options.Find()
	if f.Limit > 0 {
		opts.SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, storageError("find transactions", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTransaction
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError("decode transactions", err)
	}
	out := make([]*domain.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, ownerID, budgetID, id string) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := scope(ownerID, budgetID, id)
	if err != nil {
		return nil, err
	}
	var doc mongoTransaction
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFoundOr("find transaction", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) Update(ctx context.Context, ownerID, budgetID, id string, p ports.TransactionPatch) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := scope(ownerID, budgetID, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if p.Amount != nil {
		set["amount"] = *p.Amount
	}
	if p.ConvertedAmount != nil {
		set["convertedAmount"] = *p.ConvertedAmount
	}
	if p.Currency != nil {
		set["currency"] = *p.Currency
	}
	if p.Vendor != nil {
		set["vendor"] = *p.Vendor
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Date != nil {
		set["date"] = p.Date.UTC()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoTransaction
	if err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, notFoundOr("update transaction", err)
	}
	return doc.toDomain(), nil
}

func (r *TransactionRepository) Delete(ctx context.Context, ownerID, budgetID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := scope(ownerID, budgetID, id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return storageError("delete transaction", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByBudget removes every transaction of the budget. Deleting an
// already empty budget is not an error.
func (r *TransactionRepository) DeleteByBudget(ctx context.Context, ownerID, budgetID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := scope(ownerID, budgetID)
	if err != nil {
		return 0, err
	}
	res, err := r.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, storageError("delete budget transactions", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the budget lookup index on the transactions collection.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "budget", Value: 1}, {Key: "date", Value: -1}},
	})
	return err
}
