package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/nikmy/shifter/internal/repo/models"
	"github.com/nikmy/shifter/internal/shifts"
	"github.com/nikmy/shifter/pkg/errors"
	"github.com/nikmy/shifter/pkg/logger"
	mng "github.com/nikmy/shifter/pkg/mongotools"
)

var shiftIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: models.ShiftFieldOwner, Value: 1}, {Key: models.ShiftFieldStartDate, Value: 1}},
		Options: options.Index().SetName("user_start"),
	},
	{
		Keys:    bson.D{{Key: models.ShiftFieldStartDate, Value: 1}},
		Options: options.Index().SetName("start"),
	},
}

func newMongo(ctx context.Context, cfg MongoConfig, log logger.Logger) (*mongoRepo, error) {
	opts := options.Client().ApplyURI(cfg.URL)

	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}
	if cfg.Auth.Username != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		})
	}
	if cfg.Pool.MinSize > 0 {
		opts.SetMinPoolSize(cfg.Pool.MinSize)
	}
	if cfg.Pool.MaxSize > 0 {
		opts.SetMaxPoolSize(cfg.Pool.MaxSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.WrapFail(err, "connect to mongo db")
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, errors.WrapFail(err, "ping mongo db")
	}

	db := client.Database(cfg.Database)
	coll := db.Collection(cfg.Collection)

	_, err = coll.Indexes().CreateMany(ctx, shiftIndexes)
	if err != nil {
		return nil, errors.WrapFail(err, "create indexes")
	}

	log = log.With("mongo_repo")
	log.Infof("connected to mongo, collection %s.%s", cfg.Database, cfg.Collection)

	return &mongoRepo{
		client: client,
		coll:   coll,
		guards: db.Collection(cfg.Collection + "_owners"),
		txns:   cfg.Transactions,
		log:    log,
	}, nil
}

type mongoRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
	guards *mongo.Collection
	txns   bool
	log    logger.Logger
}

func (m *mongoRepo) Txn(ctx context.Context, do func(ctx context.Context) error) error {
	if !m.txns {
		return do(ctx)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return errors.WrapFail(err, "start mongo session")
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, do(sc)
	}, txnOpts)

	return err
}

func (m *mongoRepo) Insert(ctx context.Context, shift shifts.Shift) (string, error) {
	result, err := m.coll.InsertOne(ctx, models.ShiftFromDomain(shift))
	if err != nil {
		return "", errors.WrapFail(err, "insert shift")
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.Errorf("unexpected inserted id type %T", result.InsertedID)
	}

	return oid.Hex(), nil
}

func (m *mongoRepo) Get(ctx context.Context, id string) (shifts.Shift, error) {
	oid, ok := mng.ObjectID(id)
	if !ok {
		return shifts.Shift{}, shifts.ErrNotFound
	}

	r := m.coll.FindOne(ctx, mng.ByObjectID(oid))
	return m.decodeOne(r, "find shift by id")
}

func (m *mongoRepo) Update(ctx context.Context, id string, interval shifts.Interval) (shifts.Shift, error) {
	oid, ok := mng.ObjectID(id)
	if !ok {
		return shifts.Shift{}, shifts.ErrNotFound
	}

	start, end := interval.Start.At.UTC(), interval.End.At.UTC()
	update := mng.SetAll(
		mng.Field(models.ShiftFieldStartDate, &start),
		mng.Field(models.ShiftFieldEndDate, &end),
		mng.Field(models.ShiftFieldStartString, &interval.Start.Raw),
		mng.Field(models.ShiftFieldEndString, &interval.End.Raw),
	)

	r := m.coll.FindOneAndUpdate(
		ctx,
		mng.ByObjectID(oid),
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return m.decodeOne(r, "update shift")
}

func (m *mongoRepo) Delete(ctx context.Context, id string) error {
	oid, ok := mng.ObjectID(id)
	if !ok {
		return shifts.ErrNotFound
	}

	result, err := m.coll.DeleteOne(ctx, mng.ByObjectID(oid))
	if err != nil {
		return errors.WrapFail(err, "delete shift by oid")
	}

	if result.DeletedCount == 0 {
		return shifts.ErrNotFound
	}
	return nil
}

func (m *mongoRepo) FindOverlap(
	ctx context.Context,
	owner string,
	interval shifts.Interval,
	excludeID string,
) (*shifts.Shift, error) {
	if mongo.SessionFromContext(ctx) != nil {
		err := m.bumpGuard(ctx, owner)
		if err != nil {
			return nil, err
		}
	}

	// closed intervals intersect iff each starts no later than the other ends
	filter := bson.M{
		models.ShiftFieldOwner:     owner,
		models.ShiftFieldStartDate: bson.M{"$lte": interval.End.At.UTC()},
		models.ShiftFieldEndDate:   bson.M{"$gte": interval.Start.At.UTC()},
	}
	if oid, ok := mng.ObjectID(excludeID); ok {
		filter[models.ShiftFieldID] = bson.M{"$ne": oid}
	}

	r := m.coll.FindOne(ctx, filter, options.FindOne().SetSort(mng.Ascending(models.ShiftFieldID)))
	found, err := m.decodeOne(r, "find overlapping shift")
	if errors.Is(err, shifts.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &found, nil
}

func (m *mongoRepo) Scan(ctx context.Context, f shifts.ScanFilter) ([]shifts.Shift, error) {
	filter := mng.All()
	if f.From != nil {
		filter[models.ShiftFieldStartDate] = bson.M{"$gte": f.From.UTC()}
	}
	if f.To != nil {
		filter[models.ShiftFieldEndDate] = bson.M{"$lte": f.To.UTC()}
	}

	c, err := m.coll.Find(
		ctx,
		filter,
		options.Find().SetSort(mng.Ascending(models.ShiftFieldStartDate, models.ShiftFieldID)),
	)
	if err != nil {
		return nil, errors.WrapFail(err, "find shifts in range")
	}

	docs, err := mng.FilterFunc[models.Shift](ctx, c, nil)
	if err != nil {
		return nil, errors.WrapFail(err, "read shifts cursor")
	}

	found := make([]shifts.Shift, 0, len(docs))
	for _, d := range docs {
		found = append(found, d.ToDomain())
	}
	return found, nil
}

func (m *mongoRepo) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (m *mongoRepo) Close(ctx context.Context) error {
	m.log.Infof("disconnecting from mongo")
	err := m.client.Disconnect(ctx)
	return errors.WrapFail(err, "close mongo db connection")
}

// bumpGuard makes concurrent transactions for one owner conflict on write,
// so one of them is aborted and retried against the committed state.
func (m *mongoRepo) bumpGuard(ctx context.Context, owner string) error {
	_, err := m.guards.UpdateOne(
		ctx,
		bson.M{"_id": owner},
		bson.M{"$inc": bson.M{models.OwnerGuardFieldVersion: 1}},
		options.Update().SetUpsert(true),
	)
	return errors.WrapFail(err, "bump owner guard")
}

func (m *mongoRepo) decodeOne(r *mongo.SingleResult, what string) (shifts.Shift, error) {
	err := r.Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return shifts.Shift{}, shifts.ErrNotFound
	}
	if err != nil {
		return shifts.Shift{}, errors.WrapFail(err, what)
	}

	var doc models.Shift
	err = r.Decode(&doc)
	if err != nil {
		return shifts.Shift{}, errors.WrapFail(err, "decode shift")
	}

	return doc.ToDomain(), nil
}
