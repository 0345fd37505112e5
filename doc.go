// Package graphql provides a low level GraphQL client.
//
//  // create a client (safe to share across requests)
//  client := graphql.NewClient("https://example.com/graphql")
//
//  // make a request
//  req := graphql.NewRequest(`
//      query ($key: String!) {
//          items (id:$key) {
//              field1
//              field2
//              field3
//          }
//      }
//  `)
//
//  // set any variables
//  req.Var("key", "value")
//
//  // post it and extract a named result field
//  resp, err := client.Post(ctx, req)
//  if err != nil {
//      log.Fatal(err)
//  }
//  var items []Item
//  if err := resp.Get("items", &items); err != nil {
//      log.Fatal(err)
//  }
//
// Documents can also be loaded from an fs.FS, and variables can be bound
// from a struct instead of one by one:
//  req, err := graphql.NewRequestFromFile(documents, "update-item.graphql")
//  req.Bind(updateItemVars{ID: id, Item: item})
//
// Errors
//
// Failures of the exchange are *TransportError, errors reported by the
// server are Error values, and a missing or mistyped result field is a
// *ResponseShapeError. Use IsTransportErr, IsGraphQLErr,
// IsResponseShapeErr and IsNotFoundErr to tell them apart.
//
// Specify client
//
// To specify your own http.Client, use the WithHTTPClient option:
//  httpclient := &http.Client{}
//  client := graphql.NewClient("https://example.com/graphql", graphql.WithHTTPClient(httpclient))
package graphql
