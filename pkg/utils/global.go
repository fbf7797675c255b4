package utils

//VideoExtensions are the accepted input video containers (compared lower-cased)
var VideoExtensions = []string{".mp4", ".avi", ".mov"}

//OutputExtension is the container of every rendered video
const OutputExtension = ".mp4"

//VideoFormField is the multipart form field holding an uploaded video
const VideoFormField = "video"

//UploadFileMode is the mode uploaded videos are saved with, uploads are never modified afterwards
const UploadFileMode = 0444
