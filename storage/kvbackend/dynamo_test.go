package kvbackend

import (
	"net/http"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/dynamodbiface"
)

// cannedRequest returns a request that yields data when sent.
func cannedRequest(data interface{}) *awssdk.Request {
	return &awssdk.Request{Data: data, HTTPRequest: &http.Request{}}
}

// fakeDynamoDB emulates the table with a nested map keyed by the Bucket and
// Key attributes.
type fakeDynamoDB struct {
	dynamodbiface.ClientAPI
	items map[string]map[string][]byte
}

func attrString(av dynamodb.AttributeValue) string {
	if av.S == nil {
		return ""
	}
	return *av.S
}

func (f *fakeDynamoDB) PutItemRequest(input *dynamodb.PutItemInput) dynamodb.PutItemRequest {
	b, k := attrString(input.Item["Bucket"]), attrString(input.Item["Key"])
	if f.items == nil {
		f.items = make(map[string]map[string][]byte)
	}
	if f.items[b] == nil {
		f.items[b] = make(map[string][]byte)
	}
	f.items[b][k] = input.Item["Value"].B
	return dynamodb.PutItemRequest{
		Request: cannedRequest(&dynamodb.PutItemOutput{}),
		Input:   input,
	}
}

func (f *fakeDynamoDB) GetItemRequest(input *dynamodb.GetItemInput) dynamodb.GetItemRequest {
	b, k := attrString(input.Key["Bucket"]), attrString(input.Key["Key"])
	out := &dynamodb.GetItemOutput{}
	if v, ok := f.items[b][k]; ok {
		out.Item = map[string]dynamodb.AttributeValue{
			"Bucket": {S: awssdk.String(b)},
			"Key":    {S: awssdk.String(k)},
			"Value":  {B: v},
		}
	}
	return dynamodb.GetItemRequest{
		Request: cannedRequest(out),
		Input:   input,
	}
}

func (f *fakeDynamoDB) DeleteItemRequest(input *dynamodb.DeleteItemInput) dynamodb.DeleteItemRequest {
	b, k := attrString(input.Key["Bucket"]), attrString(input.Key["Key"])
	out := &dynamodb.DeleteItemOutput{}
	if v, ok := f.items[b][k]; ok {
		out.Attributes = map[string]dynamodb.AttributeValue{
			"Value": {B: v},
		}
		delete(f.items[b], k)
	}
	return dynamodb.DeleteItemRequest{
		Request: cannedRequest(out),
		Input:   input,
	}
}

func (f *fakeDynamoDB) QueryRequest(input *dynamodb.QueryInput) dynamodb.QueryRequest {
	b := attrString(input.ExpressionAttributeValues[":bucket"])
	out := &dynamodb.QueryOutput{}
	for k, v := range f.items[b] {
		out.Items = append(out.Items, map[string]dynamodb.AttributeValue{
			"Bucket": {S: awssdk.String(b)},
			"Key":    {S: awssdk.String(k)},
			"Value":  {B: v},
		})
	}
	return dynamodb.QueryRequest{
		Request: cannedRequest(out),
		Input:   input,
	}
}
