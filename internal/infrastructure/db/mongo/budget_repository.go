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

const collectionBudgets = "budgets"

type BudgetRepository struct {
	col *mongo.Collection
}

func NewBudgetRepository(db *mongo.Database) *BudgetRepository {
	return &BudgetRepository{col: db.Collection(collectionBudgets)}
}

type mongoAllocation struct {
	Name   string  `bson:"name"`
	Amount float64 `bson:"amount"`
}

type mongoBudget struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Name               string             `bson:"name"`
	StartDate          time.Time          `bson:"startDate"`
	EndDate            *time.Time         `bson:"endDate,omitempty"`
	TotalIncome        float64            `bson:"totalIncome"`
	SavingsGoal        float64            `bson:"savingsGoal"`
	CategoryAllocation []mongoAllocation  `bson:"categoryAllocation"`
	User               primitive.ObjectID `bson:"user"`
}

func toMongoAllocations(in []domain.CategoryAllocation) []mongoAllocation {
	out := make([]mongoAllocation, len(in))
	for i, a := range in {
		out[i] = mongoAllocation{Name: a.Name, Amount: a.Amount}
	}
	return out
}

func (b mongoBudget) toDomain() *domain.Budget {
	alloc := make([]domain.CategoryAllocation, len(b.CategoryAllocation))
	for i, a := range b.CategoryAllocation {
		alloc[i] = domain.CategoryAllocation{Name: a.Name, Amount: a.Amount}
	}
	out := &domain.Budget{
		ID:                 b.ID.Hex(),
		Name:               b.Name,
		StartDate:          b.StartDate.UTC(),
		TotalIncome:        b.TotalIncome,
		SavingsGoal:        b.SavingsGoal,
		CategoryAllocation: alloc,
		UserID:             b.User.Hex(),
	}
	if b.EndDate != nil {
		end := b.EndDate.UTC()
		out.EndDate = &end
	}
	return out
}

// ownedFilter matches a single budget of ownerID.
func ownedFilter(ownerID, id string) (bson.M, error) {
	ids, err := objectIDs(ownerID, id)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": ids[1], "user": ids[0]}, nil
}

func (r *BudgetRepository) Create(ctx context.Context, b *domain.Budget) (*domain.Budget, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(b.UserID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	doc := mongoBudget{
		Name:               b.Name,
		StartDate:          b.StartDate.UTC(),
		EndDate:            b.EndDate,
		TotalIncome:        b.TotalIncome,
		SavingsGoal:        b.SavingsGoal,
		CategoryAllocation: toMongoAllocations(b.CategoryAllocation),
		User:               owner,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, storageError("insert budget", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toDomain(), nil
}

// List returns the owner's budgets. With a limit they come most recent
// startDate first.
func (r *BudgetRepository) List(ctx context.Context, f ports.BudgetFilter) ([]*domain.Budget, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(f.OwnerID)
	if err != nil {
		return []*domain.Budget{}, nil
	}

	opts := options.Find()
	if f.Limit > 0 {
		opts.SetSort(bson.D{{Key: "startDate", Value: -1}}).SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, bson.M{"user": owner}, opts)
	if err != nil {
		return nil, storageError("find budgets", err)
	}
	defer cur.Close(ctx)

	var docs []mongoBudget
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storageError("decode budgets", err)
	}
	out := make([]*domain.Budget, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *BudgetRepository) FindByID(ctx context.Context, ownerID, id string) (*domain.Budget, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}
	var doc mongoBudget
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFoundOr("find budget", err)
	}
	return doc.toDomain(), nil
}

// Update applies the patch and returns the updated budget.
func (r *BudgetRepository) Update(ctx context.Context, ownerID, id string, p ports.BudgetPatch) (*domain.Budget, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.StartDate != nil {
		set["startDate"] = p.StartDate.UTC()
	}
	if p.EndDate != nil && !p.ClearEndDate {
		set["endDate"] = p.EndDate.UTC()
	}
	if p.TotalIncome != nil {
		set["totalIncome"] = *p.TotalIncome
	}
	if p.SavingsGoal != nil {
		set["savingsGoal"] = *p.SavingsGoal
	}
	if p.CategoryAllocation != nil {
		set["categoryAllocation"] = toMongoAllocations(*p.CategoryAllocation)
	}

	update := bson.M{"$currentDate": bson.M{"updatedAt": true}}
	if len(set) > 0 {
		update["$set"] = set
	}
	if p.ClearEndDate {
		update["$unset"] = bson.M{"endDate": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoBudget
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, notFoundOr("update budget", err)
	}
	return doc.toDomain(), nil
}

// Touch bumps updatedAt. Inside a session transaction the write makes a
// concurrent delete of the same budget abort with a write conflict.
func (r *BudgetRepository) Touch(ctx context.Context, ownerID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$currentDate": bson.M{"updatedAt": true}})
	if err != nil {
		return storageError("touch budget", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BudgetRepository) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(ownerID, id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return storageError("delete budget", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the owner lookup index on the budgets collection.
func (r *BudgetRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "startDate", Value: -1}},
	})
	return err
}
