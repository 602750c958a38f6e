// Package graphql exposes a read-only query surface over the public
// pharmacy directory: the pharmacy list, a single pharmacy, and a
// pharmacy's medicine catalog. Mutations stay on the REST API.
package graphql

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/saydalia/saydalia/app/models"
	"github.com/saydalia/saydalia/app/services"
	gqlschema "github.com/saydalia/saydalia/pkg/graphql"
	"github.com/saydalia/saydalia/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var medicineType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Medicine",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Medicine).ID.Hex(), nil
			},
		},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"inStock":     &graphql.Field{Type: graphql.Boolean},
		"stock":       &graphql.Field{Type: graphql.Int},
		"category":    &graphql.Field{Type: graphql.String},
	},
})

var pharmacyType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Pharmacy",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Pharmacy).ID.Hex(), nil
			},
		},
		"name":         &graphql.Field{Type: graphql.String},
		"address":      &graphql.Field{Type: graphql.String},
		"phone":        &graphql.Field{Type: graphql.String},
		"rating":       &graphql.Field{Type: graphql.Float},
		"specialties":  &graphql.Field{Type: graphql.NewList(graphql.String)},
		"workingHours": &graphql.Field{Type: graphql.String},
		"icon":         &graphql.Field{Type: graphql.String},
		"medicines":    &graphql.Field{Type: graphql.NewList(medicineType)},
	},
})

// NewHandler builds the /api/graphql endpoint over the pharmacy service.
func NewHandler(pharmacies *services.PharmacyService) (http.HandlerFunc, error) {
	root := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"pharmacies": &graphql.Field{
				Type: graphql.NewList(pharmacyType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return pharmacies.All(p.Context)
				},
			},
			"pharmacy": &graphql.Field{
				Type: pharmacyType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := primitive.ObjectIDFromHex(p.Args["id"].(string))
					if err != nil {
						return nil, fmt.Errorf("invalid pharmacy id")
					}
					return pharmacies.Get(p.Context, id)
				},
			},
			"medicines": &graphql.Field{
				Type: graphql.NewList(medicineType),
				Args: graphql.FieldConfigArgument{
					"pharmacyId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := primitive.ObjectIDFromHex(p.Args["pharmacyId"].(string))
					if err != nil {
						return nil, fmt.Errorf("invalid pharmacy id")
					}
					return pharmacies.Medicines(p.Context, id)
				},
			},
		},
	})

	schema, err := gqlschema.NewSchema(root)
	if err != nil {
		return nil, err
	}

	type gqlRequest struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := decodeJSON(r, &req); err != nil {
			response.Message(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			Context:        r.Context(),
		})
		response.JSON(w, http.StatusOK, result)
	}, nil
}

func decodeJSON(r *http.Request, dest interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}
