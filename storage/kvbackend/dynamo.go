package kvbackend

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/dynamodbiface"
	"github.com/cloudleakage/cloudleakage/storage"
	"github.com/pkg/errors"
)

// Dynamo stores key-value pairs in an AWS DynamoDB table.
//
// The table splits keys the same way Bolt does: everything up to the last /
// becomes the Bucket hash key, the rest the Key range key. Values are stored
// as raw bytes in the Value attribute.
type Dynamo struct {
	Client    dynamodbiface.ClientAPI
	TableName string
}

// NewDynamo creates a DynamoDB backend using the given configuration.
func NewDynamo(cfg aws.Config, tableName string) *Dynamo {
	return &Dynamo{
		Client:    dynamodb.New(cfg),
		TableName: tableName,
	}
}

// CreateTable creates the DynamoDB table.
func (d *Dynamo) CreateTable(ctx context.Context, rcu, wcu int64) error {
	_, err := d.Client.CreateTableRequest(&dynamodb.CreateTableInput{
		TableName: aws.String(d.TableName),
		AttributeDefinitions: []dynamodb.AttributeDefinition{
			{AttributeName: aws.String("Bucket"), AttributeType: dynamodb.ScalarAttributeTypeS},
			{AttributeName: aws.String("Key"), AttributeType: dynamodb.ScalarAttributeTypeS},
		},
		KeySchema: []dynamodb.KeySchemaElement{
			{AttributeName: aws.String("Bucket"), KeyType: dynamodb.KeyTypeHash},
			{AttributeName: aws.String("Key"), KeyType: dynamodb.KeyTypeRange},
		},
		ProvisionedThroughput: &dynamodb.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(rcu),
			WriteCapacityUnits: aws.Int64(wcu),
		},
	}).Send(ctx)
	if err != nil {
		return errors.Wrap(err, "create table")
	}
	return nil
}

// Put creates or updates a value.
func (d *Dynamo) Put(ctx context.Context, key string, value []byte) error {
	buc, k, err := splitKey(key)
	if err != nil {
		return errors.Wrap(err, "get bucket name")
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(d.TableName),
		Item: map[string]dynamodb.AttributeValue{
			"Bucket": {S: aws.String(string(buc))},
			"Key":    {S: aws.String(string(k))},
			"Value":  {B: value},
		},
	}
	if _, err := d.Client.PutItemRequest(input).Send(ctx); err != nil {
		return errors.Wrap(err, "dynamodb put")
	}
	return nil
}

// Get returns a single value.
func (d *Dynamo) Get(ctx context.Context, key string) ([]byte, error) {
	buc, k, err := splitKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "get bucket name")
	}
	input := &dynamodb.GetItemInput{
		TableName: aws.String(d.TableName),
		Key: map[string]dynamodb.AttributeValue{
			"Bucket": {S: aws.String(string(buc))},
			"Key":    {S: aws.String(string(k))},
		},
	}
	resp, err := d.Client.GetItemRequest(input).Send(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "dynamodb get")
	}
	if resp.Item == nil {
		return nil, storage.ErrNotFound
	}
	val, ok := resp.Item["Value"]
	if !ok || len(val.B) == 0 {
		return nil, storage.ErrNotFound
	}
	return val.B, nil
}

// Delete deletes a key.
func (d *Dynamo) Delete(ctx context.Context, key string) error {
	buc, k, err := splitKey(key)
	if err != nil {
		return errors.Wrap(err, "get bucket name")
	}
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(d.TableName),
		Key: map[string]dynamodb.AttributeValue{
			"Bucket": {S: aws.String(string(buc))},
			"Key":    {S: aws.String(string(k))},
		},
		ReturnValues: dynamodb.ReturnValueAllOld,
	}
	resp, err := d.Client.DeleteItemRequest(input).Send(ctx)
	if err != nil {
		return errors.Wrap(err, "dynamodb delete")
	}
	if len(resp.Attributes) == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Scan performs a prefix scan and populates the returned map with any values
// matching the prefix.
//
// The prefix must match a bucket, that is, a key up to its last / character.
func (d *Dynamo) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	if strings.HasSuffix(prefix, "/") {
		return nil, errors.New("prefix should not contain trailing /")
	}
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.TableName),
		KeyConditionExpression: aws.String("#bucket = :bucket"),
		ExpressionAttributeNames: map[string]string{
			"#bucket": "Bucket",
		},
		ExpressionAttributeValues: map[string]dynamodb.AttributeValue{
			":bucket": {S: aws.String(prefix)},
		},
	}
	ret := make(map[string][]byte)
	for {
		resp, err := d.Client.QueryRequest(input).Send(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "query dynamodb")
		}
		for _, item := range resp.Items {
			k, ok := item["Key"]
			if !ok || k.S == nil {
				continue
			}
			ret[prefix+"/"+*k.S] = item["Value"].B
		}
		if len(resp.LastEvaluatedKey) == 0 {
			return ret, nil
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}
}
