package rest

import (
	"github.com/dfryer1193/cloudgram/images/application"
	"github.com/gin-gonic/gin"
)

func NewApi(router *gin.Engine, service *application.ImageService) {
	handler := NewImagesHandler(service)

	v1 := router.Group("api/v1")
	{
		v1.POST("/upload", handler.UploadImage)
		v1.GET("/images", handler.GetImages)
		v1.GET("/images/:imageId", handler.GetImage)
		v1.DELETE("/images/:imageId", handler.DeleteImage)
	}
}
