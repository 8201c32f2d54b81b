/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/repokit/errors"
	"github.com/suparena/repokit/query"
	"github.com/suparena/repokit/registry"
)

// Store implements datastore.DataStore[T, K] over AWS DynamoDB using
// single-table index maps. Keys are produced by expanding the macro
// templates registered for T (for example PK: "USER#{ID}").
type Store[T any, K comparable] struct {
	client    *sdk.Client
	tableName string
	typeName  string
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg), nil
}

// New constructs a Store for type T backed by the given client and table.
// An index map must be registered for T before any operation runs.
func New[T any, K comparable](client *sdk.Client, tableName string) (*Store[T, K], error) {
	if client == nil {
		return nil, errors.NewNilArgumentError("client")
	}
	if tableName == "" {
		return nil, errors.NewValidationError("tableName", "must not be empty")
	}
	return &Store[T, K]{
		client:    client,
		tableName: tableName,
		typeName:  registry.TypeNameOf[T](),
	}, nil
}

// NewFromCredentials constructs a client and Store in one step.
func NewFromCredentials[T any, K comparable](awsAccessKey, awsSecretKey, awsRegion, tableName string) (*Store[T, K], error) {
	client, err := NewClient(awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return New[T, K](client, tableName)
}

// expandMacros expands the index map's macro templates against the fields of
// keysInput (an entity or a key struct).
func expandMacros(indexMap map[string]string, keysInput any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(indexMap))

	for fieldName, template := range indexMap {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			key := strings.Trim(macro, "{}")

			val, ok := av[key]
			if !ok {
				return ""
			}

			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				return ""
			}
		})
		res[fieldName] = expanded
	}

	return res, nil
}

// expandStringKey replaces every macro occurrence in the index map values
// with the provided key string.
func expandStringKey(indexMap map[string]string, key string) map[string]string {
	expanded := make(map[string]string, len(indexMap))
	for field, template := range indexMap {
		expanded[field] = macroPattern.ReplaceAllString(template, key)
	}
	return expanded
}

// buildKeyFromExpanded builds a DynamoDB key from the expanded index map.
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, okPK := expanded["PK"]
	sk, okSK := expanded["SK"]

	if !okPK || !okSK || pk == "" || sk == "" {
		return nil, fmt.Errorf("expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

func (s *Store[T, K]) indexMap() (map[string]string, error) {
	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		return nil, fmt.Errorf("no index map registered for %s", s.typeName)
	}
	return indexMap, nil
}

// marshalItem marshals an entity and stamps the expanded index fields.
func (s *Store[T, K]) marshalItem(entity T) (map[string]types.AttributeValue, error) {
	indexMap, err := s.indexMap()
	if err != nil {
		return nil, err
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	expanded, err := expandMacros(indexMap, entity)
	if err != nil {
		return nil, err
	}
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	return av, nil
}

func (s *Store[T, K]) entityKey(entity T) (map[string]types.AttributeValue, string, error) {
	indexMap, err := s.indexMap()
	if err != nil {
		return nil, "", err
	}
	expanded, err := expandMacros(indexMap, entity)
	if err != nil {
		return nil, "", err
	}
	keyMap, err := buildKeyFromExpanded(expanded)
	if err != nil {
		return nil, "", err
	}
	return keyMap, expanded["PK"], nil
}

// Insert stores a new entity; inserting an existing key fails.
func (s *Store[T, K]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T

	av, err := s.marshalItem(entity)
	if err != nil {
		return zero, err
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return zero, errors.NewAlreadyExistsError(s.typeName, stringAttr(av["PK"]))
		}
		return zero, fmt.Errorf("PutItem failed: %w", err)
	}
	return entity, nil
}

// Update replaces an existing entity; updating a missing key fails.
func (s *Store[T, K]) Update(ctx context.Context, entity T) (T, error) {
	var zero T

	av, err := s.marshalItem(entity)
	if err != nil {
		return zero, err
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           &s.tableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if stderrors.As(err, &cfe) {
			return zero, errors.NewNotFoundError(s.typeName, stringAttr(av["PK"]))
		}
		return zero, fmt.Errorf("PutItem failed: %w", err)
	}
	return entity, nil
}

// GetByID retrieves a single item by key, or nil when absent.
func (s *Store[T, K]) GetByID(ctx context.Context, key K) (*T, error) {
	indexMap, err := s.indexMap()
	if err != nil {
		return nil, err
	}

	keyMap, err := buildKeyFromExpanded(expandStringKey(indexMap, fmt.Sprintf("%v", key)))
	if err != nil {
		return nil, fmt.Errorf("failed to build key: %w", err)
	}

	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Delete removes an entity by value; reports whether an item was removed.
func (s *Store[T, K]) Delete(ctx context.Context, entity T) (bool, error) {
	keyMap, _, err := s.entityKey(entity)
	if err != nil {
		return false, err
	}
	return s.deleteKey(ctx, keyMap)
}

// DeleteByID removes an entity by key; reports whether an item was removed.
func (s *Store[T, K]) DeleteByID(ctx context.Context, key K) (bool, error) {
	indexMap, err := s.indexMap()
	if err != nil {
		return false, err
	}
	keyMap, err := buildKeyFromExpanded(expandStringKey(indexMap, fmt.Sprintf("%v", key)))
	if err != nil {
		return false, fmt.Errorf("failed to build key: %w", err)
	}
	return s.deleteKey(ctx, keyMap)
}

func (s *Store[T, K]) deleteKey(ctx context.Context, keyMap map[string]types.AttributeValue) (bool, error) {
	out, err := s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:    &s.tableName,
		Key:          keyMap,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}
	return len(out.Attributes) > 0, nil
}

func stringAttr(av types.AttributeValue) string {
	if sv, ok := av.(*types.AttributeValueMemberS); ok {
		return sv.Value
	}
	return ""
}

// filterValues converts named where arguments into expression attribute
// values, prefixing each name with ":".
func filterValues(args map[string]any) (map[string]types.AttributeValue, error) {
	if len(args) == 0 {
		return nil, nil
	}
	values := make(map[string]types.AttributeValue, len(args))
	for name, val := range args {
		av, err := attributevalue.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter value %q: %w", name, err)
		}
		values[":"+name] = av
	}
	return values, nil
}

// validateOptions rejects option parts the ddb backend cannot honour.
func (s *Store[T, K]) validateOptions(opts *query.Options[T]) error {
	if opts == nil {
		return nil
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Filter != nil {
		return errors.NewValidationError("filter",
			"in-process specifications are not supported by the ddb backend; use Where")
	}
	if opts.SortField != "" || opts.Less != nil {
		return errors.NewValidationError("sort",
			"scan results are unordered; sorting is not supported by the ddb backend")
	}
	return nil
}
