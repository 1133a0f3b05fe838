package catalog

import "family-store/internal/model"

// DefaultCustomImageURL is used when a custom product is added without an image.
const DefaultCustomImageURL = "https://picsum.photos/seed/custom/400/300"

// SeedProducts returns the fixed product list the store opens with.
func SeedProducts() []model.Product {
	return []model.Product{
		{ID: "h1", Name: "茶葉蛋", Price: 9, Category: model.CategoryHiLife, ImageURL: "https://i.meee.com.tw/DmDbCrF.jpg"},
		{ID: "f1", Name: "可樂（小瓶）", Price: 35, Category: model.CategoryFamilyMart, ImageURL: "https://i.meee.com.tw/BCMZOO1.jpg"},
		{ID: "f2", Name: "麥香奶茶（小瓶）", Price: 28, Category: model.CategoryFamilyMart, ImageURL: "https://i.meee.com.tw/jAsRmGj.jpg"},
		{ID: "f3", Name: "寶礦力水得（小瓶）", Price: 29, Category: model.CategoryFamilyMart, ImageURL: "https://i.meee.com.tw/9ziewpL.jpg"},
		{ID: "c1", Name: "饅頭", Price: 20, Category: model.CategoryChineseBreakfast, ImageURL: "https://i.meee.com.tw/fF6f6KO.jpg"},
		{ID: "c2", Name: "油條", Price: 20, Category: model.CategoryChineseBreakfast, ImageURL: "https://i.meee.com.tw/KXjxY8e.jpg"},
		{ID: "w1", Name: "漢堡蛋", Price: 35, Category: model.CategoryWesternBreakfast, ImageURL: "https://i.meee.com.tw/IpNN9gZ.jpg"},
	}
}
