package controllers

import (
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/feria/app/models"
	"github.com/shashiranjanraj/feria/app/services"
	"github.com/shashiranjanraj/feria/pkg/ctx"
	pkggraphql "github.com/shashiranjanraj/feria/pkg/graphql"
	"github.com/shashiranjanraj/feria/pkg/logger"
)

// GraphQLController serves the read-only catalog query endpoint.
type GraphQLController struct {
	schema  graphql.Schema
	catalog *services.CatalogService
	stores  *services.StoreService
}

func NewGraphQLController() *GraphQLController {
	gc := &GraphQLController{
		catalog: services.NewCatalogService(),
		stores:  services.NewStoreService(),
	}

	gc.schema = pkggraphql.MustSchema(gc.rootQuery())
	return gc
}

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Product).ID.Hex(), nil
			},
		},
		"name": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Product).Name, nil
			},
		},
		"price": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Product).Price, nil
			},
		},
		"description": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Product).Description, nil
			},
		},
		"sold": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Product).Sold, nil
			},
		},
		"rating": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Product).Rating, nil
			},
		},
	},
})

var storeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Store",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Store).ID.Hex(), nil
			},
		},
		"name": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Store).Name, nil
			},
		},
		"city": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Store).City, nil
			},
		},
		"rating": &graphql.Field{
			Type: graphql.Float,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.Store).Rating, nil
			},
		},
	},
})

func (gc *GraphQLController) rootQuery() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"title": &graphql.ArgumentConfig{Type: graphql.String},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 6},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					title, _ := p.Args["title"].(string)
					limit, _ := p.Args["limit"].(int)
					products, _, err := gc.catalog.ListProducts(p.Context, services.ProductListQuery{
						Title: title,
						Limit: limit,
					})
					return products, err
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return gc.catalog.GetProduct(p.Context, p.Args["id"].(string))
				},
			},
			"stores": &graphql.Field{
				Type: graphql.NewList(storeType),
				Args: graphql.FieldConfigArgument{
					"city":  &graphql.ArgumentConfig{Type: graphql.String},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 6},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					city, _ := p.Args["city"].(string)
					limit, _ := p.Args["limit"].(int)
					stores, _, err := gc.stores.List(p.Context, services.StoreListQuery{
						City:  city,
						Limit: limit,
					})
					return stores, err
				},
			},
			"store": &graphql.Field{
				Type: storeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return gc.stores.Get(p.Context, p.Args["id"].(string))
				},
			},
		},
	})
}

// Query handles POST /api/graphql.
func (gc *GraphQLController) Query(c *ctx.Context) {
	var body struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if !c.BindJSON(&body) {
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         gc.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		Context:        c.Context(),
	})
	if len(result.Errors) > 0 {
		logger.Debug("graphql: query errors", "errors", len(result.Errors))
	}
	c.JSON(http.StatusOK, result)
}
