package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense_tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	activityCollection = "activity"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Expenses     []expenseDoc       `bson:"expenses"`
	Version      int64              `bson:"version"`
}

type expenseDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Type        string               `bson:"type"`
	Date        time.Time            `bson:"date"`
	Description string               `bson:"description"`
	Amount      primitive.Decimal128 `bson:"amount"`
}

type activityDoc struct {
	ID          string    `bson:"_id"`
	OccurredAt  time.Time `bson:"occurred_at"`
	UserID      string    `bson:"user_id"`
	ExpenseID   string    `bson:"expense_id"`
	Kind        string    `bson:"kind"`
	Description string    `bson:"message"`
	Metadata    any       `bson:"meta,omitempty"`
}

// NewMongoRepository wires the MongoDB stores and makes sure the indexes exist.
func NewMongoRepository(ctx context.Context, database *mongo.Database) (*Repository, error) {
	accounts := NewUserMongo(database.Collection(usersCollection))
	if err := accounts.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return &Repository{
		Accounts: accounts,
		Activity: NewActivityMongo(database.Collection(activityCollection)),
	}, nil
}

// UserMongo stores one document per user with the expenses embedded as an array.
type UserMongo struct {
	coll *mongo.Collection
}

func NewUserMongo(coll *mongo.Collection) *UserMongo {
	return &UserMongo{coll: coll}
}

var _ Accounts = (*UserMongo)(nil)

func (r *UserMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "expenses._id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *UserMongo) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	assignExpenseIDs(u)
	u.Version = 1
	doc, err := toUserDoc(u)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return nil
}

func (r *UserMongo) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil // malformed ids never match a document
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserMongo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserMongo) FindByExpenseID(ctx context.Context, expenseID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(expenseID)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"expenses._id": oid})
}

// Save replaces the document only when the stored version is unchanged.
func (r *UserMongo) Save(ctx context.Context, u *models.User) error {
	assignExpenseIDs(u)
	doc, err := toUserDoc(u)
	if err != nil {
		return err
	}
	doc.Version = u.Version + 1

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": u.Version}, doc)
	if err != nil {
		return fmt.Errorf("replace user %q: %w", u.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	u.Version = doc.Version
	return nil
}

func (r *UserMongo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return fromUserDoc(doc)
}

func toUserDoc(u *models.User) (userDoc, error) {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return userDoc{}, fmt.Errorf("user id %q: %w", u.ID, err)
	}
	doc := userDoc{
		ID:           oid,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Expenses:     make([]expenseDoc, 0, len(u.Expenses)),
		Version:      u.Version,
	}
	for _, e := range u.Expenses {
		eid, err := primitive.ObjectIDFromHex(e.ID)
		if err != nil {
			return userDoc{}, fmt.Errorf("expense id %q: %w", e.ID, err)
		}
		amount, err := primitive.ParseDecimal128(e.Amount.String())
		if err != nil {
			return userDoc{}, fmt.Errorf("expense %q amount: %w", e.ID, err)
		}
		doc.Expenses = append(doc.Expenses, expenseDoc{
			ID:          eid,
			Type:        string(e.Type),
			Date:        e.Date.Time,
			Description: e.Description,
			Amount:      amount,
		})
	}
	return doc, nil
}

func fromUserDoc(doc userDoc) (*models.User, error) {
	u := &models.User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Expenses:     make([]models.Expense, 0, len(doc.Expenses)),
		Version:      doc.Version,
	}
	for _, e := range doc.Expenses {
		amount, err := decimal.NewFromString(e.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("expense %s amount: %w", e.ID.Hex(), err)
		}
		d := e.Date.UTC()
		u.Expenses = append(u.Expenses, models.Expense{
			ID:          e.ID.Hex(),
			Type:        models.ExpenseType(e.Type),
			Date:        models.NewDate(d.Year(), d.Month(), d.Day()),
			Description: e.Description,
			Amount:      amount,
		})
	}
	return u, nil
}

// ActivityMongo is the MongoDB flavour of the activity log.
type ActivityMongo struct {
	coll *mongo.Collection
}

func NewActivityMongo(coll *mongo.Collection) *ActivityMongo { return &ActivityMongo{coll: coll} }

var _ ActivityRepo = (*ActivityMongo)(nil)

func (r *ActivityMongo) Append(ctx context.Context, e models.ActivityEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, activityDoc{
		ID:          e.EventID,
		OccurredAt:  e.OccurredAt.UTC(),
		UserID:      e.UserID,
		ExpenseID:   e.ExpenseID,
		Kind:        strings.ToUpper(strings.TrimSpace(e.Kind)),
		Description: e.Description,
		Metadata:    e.Metadata,
	})
	return err
}

func (r *ActivityMongo) List(ctx context.Context, userID string, from, to time.Time, kind string) ([]models.ActivityEvent, error) {
	filter := activityFilter(userID, from, to, kind)
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.ActivityEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromActivityDoc(d))
	}
	return out, nil
}

func fromActivityDoc(d activityDoc) models.ActivityEvent {
	return models.ActivityEvent{
		EventID:     d.ID,
		OccurredAt:  d.OccurredAt.UTC(),
		UserID:      d.UserID,
		ExpenseID:   d.ExpenseID,
		Kind:        d.Kind,
		Description: d.Description,
		Metadata:    plainMeta(d.Metadata),
	}
}

// plainMeta turns decoded BSON containers into maps and slices so metadata
// serializes to the same JSON as on the SQLite store.
func plainMeta(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = plainMeta(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = plainMeta(e)
		}
		return m
	case primitive.A:
		a := make([]any, len(t))
		for i, e := range t {
			a[i] = plainMeta(e)
		}
		return a
	default:
		return v
	}
}

func activityFilter(userID string, from, to time.Time, kind string) bson.M {
	filter := bson.M{"user_id": userID}
	occurred := bson.M{}
	if !from.IsZero() {
		occurred["$gte"] = from.UTC()
	}
	if !to.IsZero() {
		occurred["$lte"] = to.UTC()
	}
	if len(occurred) > 0 {
		filter["occurred_at"] = occurred
	}
	if kind = strings.ToUpper(strings.TrimSpace(kind)); kind != "" {
		filter["kind"] = kind
	}
	return filter
}
