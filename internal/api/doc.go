// Package api provides the DropWishes REST API.
//
//	@title						DropWishes API
//	@version					1.0
//	@description				Wishlist and blog API
//	@BasePath					/api
//	@securityDefinitions.apikey	TokenAuth
//	@in							header
//	@name						Authorization
package api
