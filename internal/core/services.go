package core

type Services struct {
	Auth     *AuthService
	User     *UserService
	Product  *ProductService
	Wishlist *WishlistService
	Post     *PostService
	Comment  *CommentService
	Tag      *TagService
}

func NewServices(db DB) *Services {
	products := NewProductService(db)
	tags := NewTagService(db)

	return &Services{
		Auth:     NewAuthService(db),
		User:     NewUserService(db),
		Product:  products,
		Wishlist: NewWishlistService(db, products),
		Post:     NewPostService(db, tags),
		Comment:  NewCommentService(db),
		Tag:      tags,
	}
}
